package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/types"
)

type MatchingTestSuite struct {
	suite.Suite
}

func TestMatchingSuite(t *testing.T) {
	suite.Run(t, new(MatchingTestSuite))
}

func (suite *MatchingTestSuite) TestMatchBar() {
	bar := types.Bar{
		Symbol: "AAPL",
		Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Open:   100,
		High:   105,
		Low:    95,
		Close:  102,
		Volume: 1000,
	}

	tests := []struct {
		name      string
		side      types.Side
		offset    types.Offset
		orderType types.OrderType
		price     float64
		slippage  float64
		wantFill  float64
		wantOK    bool
	}{
		{name: "market buy fills at open", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeMarket, wantFill: 100, wantOK: true},
		{name: "market sell fills at open", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeMarket, wantFill: 100, wantOK: true},
		{name: "market buy slips up", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeMarket, slippage: 0.5, wantFill: 100.5, wantOK: true},
		{name: "market sell slips down", side: types.SideShort, offset: types.OffsetOpen, orderType: types.OrderTypeMarket, slippage: 0.5, wantFill: 99.5, wantOK: true},
		{name: "limit buy inside range fills at limit", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 98, wantFill: 98, wantOK: true},
		{name: "limit buy above high caps at high", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 110, wantFill: 105, wantOK: true},
		{name: "limit buy below low does not fill", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 94, wantOK: false},
		{name: "limit sell inside range fills at limit", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 103, wantFill: 103, wantOK: true},
		{name: "limit sell below low caps at low", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 90, wantFill: 95, wantOK: true},
		{name: "limit sell above high does not fill", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 106, wantOK: false},
		{name: "covering short buys through limit", side: types.SideShort, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 98, wantFill: 98, wantOK: true},
		{name: "stop buy triggers when high crosses", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeStop, price: 103, wantFill: 103, wantOK: true},
		{name: "stop buy gapped open fills at open", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeStop, price: 97, wantFill: 100, wantOK: true},
		{name: "stop buy above high does not trigger", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeStop, price: 106, wantOK: false},
		{name: "stop sell triggers when low crosses", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 97, wantFill: 97, wantOK: true},
		{name: "stop sell gapped open fills at open", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 103, wantFill: 100, wantOK: true},
		{name: "stop sell below low does not trigger", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 94, wantOK: false},
		{name: "stop sell slips down", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 97, slippage: 0.5, wantFill: 96.5, wantOK: true},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			order := types.Order{
				Symbol: "AAPL",
				Side:   tt.side,
				Offset: tt.offset,
				Type:   tt.orderType,
				Price:  tt.price,
				Volume: 1,
			}

			fill, ok := matchBar(&order, bar, tt.slippage)
			suite.Equal(tt.wantOK, ok)

			if tt.wantOK {
				suite.InDelta(tt.wantFill, fill, 1e-9)
			}
		})
	}
}

func (suite *MatchingTestSuite) TestMatchTick() {
	tick := types.Tick{
		Symbol:    "BTCUSDT",
		Time:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LastPrice: 50000,
		BidPrice:  49999,
		AskPrice:  50001,
		Volume:    5,
	}

	tests := []struct {
		name      string
		side      types.Side
		offset    types.Offset
		orderType types.OrderType
		price     float64
		slippage  float64
		tick      types.Tick
		wantFill  float64
		wantOK    bool
	}{
		{name: "market buy lifts the ask", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeMarket, tick: tick, wantFill: 50001, wantOK: true},
		{name: "market sell hits the bid", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeMarket, tick: tick, wantFill: 49999, wantOK: true},
		{name: "market buy with empty ask does not fill", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeMarket, tick: types.Tick{LastPrice: 50000}, wantOK: false},
		{name: "market sell with empty bid does not fill", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeMarket, tick: types.Tick{LastPrice: 50000}, wantOK: false},
		{name: "limit buy crosses when ask at or below limit", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 50001, tick: tick, wantFill: 50001, wantOK: true},
		{name: "limit buy below ask rests", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 50000, tick: tick, wantOK: false},
		{name: "limit sell crosses when bid at or above limit", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 49999, tick: tick, wantFill: 49999, wantOK: true},
		{name: "limit sell above bid rests", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeLimit, price: 50000, tick: tick, wantOK: false},
		{name: "limit buy with slippage pays above ask", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeLimit, price: 50001, slippage: 1, tick: tick, wantFill: 50002, wantOK: true},
		{name: "stop buy triggers on last price", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeStop, price: 49999, tick: tick, wantFill: 50000, wantOK: true},
		{name: "stop buy above last rests", side: types.SideLong, offset: types.OffsetOpen, orderType: types.OrderTypeStop, price: 50001, tick: tick, wantOK: false},
		{name: "stop sell triggers on last price", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 50001, tick: tick, wantFill: 50000, wantOK: true},
		{name: "stop sell below last rests", side: types.SideLong, offset: types.OffsetClose, orderType: types.OrderTypeStop, price: 49999, tick: tick, wantOK: false},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			order := types.Order{
				Symbol: "BTCUSDT",
				Side:   tt.side,
				Offset: tt.offset,
				Type:   tt.orderType,
				Price:  tt.price,
				Volume: 1,
			}

			fill, ok := matchTick(&order, tt.tick, tt.slippage)
			suite.Equal(tt.wantOK, ok)

			if tt.wantOK {
				suite.InDelta(tt.wantFill, fill, 1e-9)
			}
		})
	}
}
