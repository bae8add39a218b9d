package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/types"
)

type DailyTestSuite struct {
	suite.Suite
}

func TestDailySuite(t *testing.T) {
	suite.Run(t, new(DailyTestSuite))
}

func (suite *DailyTestSuite) day(dayOfMonth int) time.Time {
	return time.Date(2024, 3, dayOfMonth, 9, 30, 0, 0, time.UTC)
}

func (suite *DailyTestSuite) TestFinishWithoutDataSealsNothing() {
	daily := newDailyAggregator(1000, 1, 0)
	daily.finish(1000)
	suite.Empty(daily.all())
}

func (suite *DailyTestSuite) TestSameDateNeverSeals() {
	daily := newDailyAggregator(1000, 1, 0)

	daily.roll(suite.day(1), nil, 1000)
	daily.roll(suite.day(1).Add(time.Hour), nil, 1000)
	suite.Empty(daily.all())

	daily.roll(suite.day(2), nil, 1000)
	suite.Len(daily.all(), 1)
}

func (suite *DailyTestSuite) TestPnLDecompositionIdentity() {
	// One trading day: buy 1 unit at a raw price of 100 which fills at
	// 101 after one point of slippage, pay 0.30 commission, and mark
	// the close at 105. Equity ends at 1000 - 0.3 - 101 + 105 = 1003.7.
	daily := newDailyAggregator(1000, 1, 1)

	daily.roll(suite.day(1), nil, 1000)
	daily.observeTrade(types.Trade{
		Symbol: "AAPL", Exchange: "TEST",
		Side: types.SideLong, Offset: types.OffsetOpen,
		Price: 101, Volume: 1, Commission: 0.3,
	})
	daily.observeClose("AAPL", 105)
	daily.finish(1003.7)

	results := daily.all()
	suite.Require().Len(results, 1)

	result := results[0]
	suite.Equal("2024-03-01", result.Date)
	suite.Equal(1, result.TradeCount)
	suite.InDelta(101.0, result.Turnover, 1e-9)
	suite.InDelta(0.3, result.Commission, 1e-9)
	suite.InDelta(1.0, result.Slippage, 1e-9)
	suite.InDelta(0.0, result.HoldingPnL, 1e-9)
	suite.InDelta(5.0, result.TradingPnL, 1e-9)
	suite.InDelta(5.0, result.TotalPnL, 1e-9)
	suite.InDelta(3.7, result.NetPnL, 1e-9)
	suite.InDelta(1003.7, result.Balance, 1e-9)

	suite.InDelta(result.TotalPnL-result.Commission-result.Slippage, result.NetPnL, 1e-9)
}

func (suite *DailyTestSuite) TestHoldingPnLUsesPreviousClose() {
	daily := newDailyAggregator(1000, 1, 0)

	// Day one: buy 1 at 100, close at 102, equity 1002.
	daily.roll(suite.day(1), nil, 1000)
	daily.observeTrade(types.Trade{
		Symbol: "AAPL", Exchange: "TEST",
		Side: types.SideLong, Offset: types.OffsetOpen,
		Price: 100, Volume: 1,
	})
	daily.observeClose("AAPL", 102)

	// Day two: no trades, the held unit drifts from 102 to 108.
	daily.roll(suite.day(2), map[string]float64{"AAPL": 1}, 1002)
	daily.observeClose("AAPL", 108)
	daily.finish(1008)

	results := daily.all()
	suite.Require().Len(results, 2)

	first := results[0]
	suite.InDelta(0.0, first.HoldingPnL, 1e-9)
	suite.InDelta(2.0, first.TradingPnL, 1e-9)
	suite.InDelta(2.0, first.NetPnL, 1e-9)
	suite.InDelta(1002.0, first.Balance, 1e-9)

	second := results[1]
	suite.InDelta(6.0, second.HoldingPnL, 1e-9)
	suite.InDelta(0.0, second.TradingPnL, 1e-9)
	suite.InDelta(6.0, second.NetPnL, 1e-9)
	suite.InDelta(1008.0, second.Balance, 1e-9)
	suite.InDelta(102.0, second.PreCloses["AAPL"], 1e-9)
	suite.InDelta(108.0, second.ClosePrices["AAPL"], 1e-9)
}

func (suite *DailyTestSuite) TestPreCloseDefaultsToDayClose() {
	daily := newDailyAggregator(1000, 1, 0)

	// A position carried into the very first day has no previous close
	// to mark against, so it contributes no holding PnL.
	daily.roll(suite.day(1), map[string]float64{"AAPL": 2}, 1000)
	daily.observeClose("AAPL", 50)
	daily.finish(1000)

	results := daily.all()
	suite.Require().Len(results, 1)
	suite.InDelta(0.0, results[0].HoldingPnL, 1e-9)
	suite.InDelta(0.0, results[0].NetPnL, 1e-9)
}

func (suite *DailyTestSuite) TestSellSideTradingPnL() {
	daily := newDailyAggregator(1000, 1, 0.5)

	// Two units carried in at 100, cash 800, equity 1000.
	daily.roll(suite.day(1), map[string]float64{"AAPL": 2}, 1000)
	daily.observeClose("AAPL", 100)

	// Day two: sell both at a raw 100 (fills 99.5 after slippage) and
	// watch the close fall to 97. Cash ends 800 + 199 - 0.1 = 998.9.
	daily.roll(suite.day(2), map[string]float64{"AAPL": 2}, 1000)
	daily.observeTrade(types.Trade{
		Symbol: "AAPL", Exchange: "TEST",
		Side: types.SideLong, Offset: types.OffsetClose,
		Price: 99.5, Volume: 2, Commission: 0.1,
	})
	daily.observeClose("AAPL", 97)
	daily.finish(998.9)

	results := daily.all()
	suite.Require().Len(results, 2)

	result := results[1]
	// Held into a 3 point drop, but sold before it: the two legs
	// cancel and the day nets out to pure friction.
	suite.InDelta(-6.0, result.HoldingPnL, 1e-9)
	suite.InDelta(6.0, result.TradingPnL, 1e-9)
	suite.InDelta(0.0, result.TotalPnL, 1e-9)
	suite.InDelta(1.0, result.Slippage, 1e-9)
	suite.InDelta(0.1, result.Commission, 1e-9)
	suite.InDelta(-1.1, result.NetPnL, 1e-9)
	suite.InDelta(result.TotalPnL-result.Commission-result.Slippage, result.NetPnL, 1e-9)
}
