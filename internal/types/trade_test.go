package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestPositionDelta() {
	tests := []struct {
		name     string
		side     Side
		offset   Offset
		volume   float64
		expected float64
	}{
		{name: "open long adds", side: SideLong, offset: OffsetOpen, volume: 10, expected: 10},
		{name: "close short adds", side: SideShort, offset: OffsetClose, volume: 4, expected: 4},
		{name: "open short subtracts", side: SideShort, offset: OffsetOpen, volume: 10, expected: -10},
		{name: "close long subtracts", side: SideLong, offset: OffsetClose, volume: 4, expected: -4},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			trade := Trade{Side: tt.side, Offset: tt.offset, Volume: tt.volume}
			suite.Equal(tt.expected, trade.PositionDelta())
		})
	}
}

func (suite *TradeTestSuite) TestIsBuyMatchesOrder() {
	for _, side := range []Side{SideLong, SideShort} {
		for _, offset := range []Offset{OffsetOpen, OffsetClose} {
			trade := Trade{Side: side, Offset: offset}
			order := Order{Side: side, Offset: offset}
			suite.Equal(order.IsBuy(), trade.IsBuy())
		}
	}
}

func (suite *TradeTestSuite) TestTradeFields() {
	executedAt := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)
	trade := Trade{
		ID:         3,
		OrderID:    7,
		Symbol:     "AAPL",
		Side:       SideLong,
		Offset:     OffsetClose,
		Price:      105.5,
		Volume:     100,
		Commission: 10.55,
		PnL:        539.45,
		ExecutedAt: executedAt,
	}

	suite.Equal(int64(3), trade.ID)
	suite.Equal(int64(7), trade.OrderID)
	suite.Equal("AAPL", trade.Symbol)
	suite.Equal(SideLong, trade.Side)
	suite.Equal(OffsetClose, trade.Offset)
	suite.Equal(105.5, trade.Price)
	suite.Equal(100.0, trade.Volume)
	suite.Equal(10.55, trade.Commission)
	suite.Equal(539.45, trade.PnL)
	suite.Equal(executedAt, trade.ExecutedAt)
	suite.False(trade.IsBuy())
	suite.Equal(-100.0, trade.PositionDelta())
}
