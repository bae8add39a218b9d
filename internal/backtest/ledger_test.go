package backtest

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/types"
)

type LedgerTestSuite struct {
	suite.Suite
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (suite *LedgerTestSuite) trade(side types.Side, offset types.Offset, price, volume, commission float64) types.Trade {
	return types.Trade{
		Symbol:     "AAPL",
		Exchange:   "TEST",
		Side:       side,
		Offset:     offset,
		Price:      price,
		Volume:     volume,
		Commission: commission,
	}
}

func (suite *LedgerTestSuite) TestOpenBlendsAverageEntry() {
	ledger := newLedger(10000, 1)

	first := suite.trade(types.SideLong, types.OffsetOpen, 100, 2, 1)
	ledger.apply(&first, 0)
	suite.InDelta(-1.0, first.PnL, 1e-9)

	second := suite.trade(types.SideLong, types.OffsetOpen, 110, 2, 1)
	ledger.apply(&second, 0)
	suite.InDelta(-1.0, second.PnL, 1e-9)

	pos := ledger.position("AAPL")
	suite.InDelta(4.0, pos.Volume, 1e-9)
	suite.InDelta(105.0, pos.AvgEntryPrice, 1e-9)

	// Cash moved by both commissions and the full traded value.
	account := ledger.account()
	suite.InDelta(10000-1-200-1-220, account.Cash, 1e-9)
}

func (suite *LedgerTestSuite) TestCloseLongRealizesNetOfCommission() {
	ledger := newLedger(10000, 1)

	open := suite.trade(types.SideLong, types.OffsetOpen, 100, 2, 1)
	ledger.apply(&open, 0)

	closeTrade := suite.trade(types.SideLong, types.OffsetClose, 110, 2, 1)
	ledger.apply(&closeTrade, 0)

	suite.InDelta(19.0, closeTrade.PnL, 1e-9)

	pos := ledger.position("AAPL")
	suite.InDelta(0.0, pos.Volume, 1e-9)
	suite.InDelta(0.0, pos.AvgEntryPrice, 1e-9)
	suite.InDelta(18.0, pos.RealizedPnL, 1e-9)

	account := ledger.account()
	suite.InDelta(18.0, account.RealizedPnL, 1e-9)
	suite.InDelta(10018.0, account.Cash, 1e-9)
	suite.InDelta(10018.0, account.Equity, 1e-9)
}

func (suite *LedgerTestSuite) TestShortRoundTrip() {
	ledger := newLedger(10000, 1)

	short := suite.trade(types.SideShort, types.OffsetOpen, 50, 3, 0.5)
	ledger.apply(&short, 0)

	// Opening a short sells, so the proceeds land in cash.
	suite.InDelta(10149.5, ledger.account().Cash, 1e-9)

	ledger.mark("AAPL", 45)
	pos := ledger.position("AAPL")
	suite.InDelta(-3.0, pos.Volume, 1e-9)
	suite.InDelta(15.0, pos.UnrealizedPnL, 1e-9)
	suite.InDelta(10014.5, ledger.equityFloat(), 1e-9)

	cover := suite.trade(types.SideShort, types.OffsetClose, 45, 3, 0.5)
	ledger.apply(&cover, 0)

	suite.InDelta(14.5, cover.PnL, 1e-9)

	account := ledger.account()
	suite.InDelta(14.0, account.RealizedPnL, 1e-9)
	suite.InDelta(10014.0, account.Cash, 1e-9)
	suite.InDelta(10014.0, account.Equity, 1e-9)
	suite.InDelta(0.0, account.UnrealizedPnL, 1e-9)
}

func (suite *LedgerTestSuite) TestContractSizeScalesEverything() {
	ledger := newLedger(100000, 10)

	open := suite.trade(types.SideLong, types.OffsetOpen, 100, 1, 2)
	ledger.apply(&open, 0.5)

	suite.InDelta(98998.0, ledger.account().Cash, 1e-9)

	ledger.mark("AAPL", 105)
	suite.InDelta(50.0, ledger.position("AAPL").UnrealizedPnL, 1e-9)
	suite.InDelta(100048.0, ledger.equityFloat(), 1e-9)

	closeTrade := suite.trade(types.SideLong, types.OffsetClose, 105, 1, 2)
	ledger.apply(&closeTrade, 0.5)

	suite.InDelta(48.0, closeTrade.PnL, 1e-9)
	suite.InDelta(100046.0, ledger.equityFloat(), 1e-9)

	suite.InDelta(2050.0, ledger.totalTurnover(), 1e-9)
	suite.InDelta(4.0, ledger.totalCommission(), 1e-9)
	suite.InDelta(10.0, ledger.totalSlippage(), 1e-9)
}

func (suite *LedgerTestSuite) TestEquityIdentityAfterEveryFill() {
	ledger := newLedger(5000, 1)

	fills := []types.Trade{
		suite.trade(types.SideLong, types.OffsetOpen, 20, 10, 0.2),
		suite.trade(types.SideLong, types.OffsetOpen, 22, 5, 0.1),
		suite.trade(types.SideLong, types.OffsetClose, 25, 8, 0.2),
		suite.trade(types.SideLong, types.OffsetClose, 24, 7, 0.1),
		suite.trade(types.SideShort, types.OffsetOpen, 25, 4, 0.1),
		suite.trade(types.SideShort, types.OffsetClose, 23, 4, 0.1),
	}

	for i := range fills {
		ledger.apply(&fills[i], 0)
		ledger.mark("AAPL", fills[i].Price)

		account := ledger.account()
		suite.InDelta(
			account.InitialCapital+account.RealizedPnL+account.UnrealizedPnL,
			account.Equity,
			1e-9,
		)
	}

	// Trade PnLs written back in place reproduce the ledger total.
	sum := 0.0
	for _, fill := range fills {
		sum += fill.PnL
	}
	suite.InDelta(ledger.account().RealizedPnL, sum, 1e-9)
}

func (suite *LedgerTestSuite) TestVolumesKeepsFlatSymbols() {
	ledger := newLedger(10000, 1)

	open := suite.trade(types.SideLong, types.OffsetOpen, 100, 2, 0)
	ledger.apply(&open, 0)
	closeTrade := suite.trade(types.SideLong, types.OffsetClose, 100, 2, 0)
	ledger.apply(&closeTrade, 0)

	other := types.Trade{
		Symbol: "MSFT", Exchange: "TEST",
		Side: types.SideLong, Offset: types.OffsetOpen,
		Price: 300, Volume: 1,
	}
	ledger.apply(&other, 0)

	volumes := ledger.volumes()
	suite.Require().Len(volumes, 2)
	suite.InDelta(0.0, volumes["AAPL"], 1e-9)
	suite.InDelta(1.0, volumes["MSFT"], 1e-9)
}

func (suite *LedgerTestSuite) TestUnknownSymbolSnapshotsFlat() {
	ledger := newLedger(10000, 1)

	pos := ledger.position("NVDA")
	suite.Equal("NVDA", pos.Symbol)
	suite.InDelta(0.0, pos.Volume, 1e-9)
	suite.InDelta(0.0, pos.UnrealizedPnL, 1e-9)
}
