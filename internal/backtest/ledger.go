package backtest

import (
	"github.com/shopspring/decimal"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// ledger tracks positions, cash and cumulative costs for one run. All
// mutation paths run on decimals; floats only appear at the exported
// edges. The identity equity = capital + realized + unrealized holds
// after every fill and every mark.
type ledger struct {
	capital decimal.Decimal
	cash    decimal.Decimal
	size    decimal.Decimal

	positions map[string]*positionState

	realized     decimal.Decimal
	commission   decimal.Decimal
	slippageCost decimal.Decimal
	turnover     decimal.Decimal
}

// positionState is the mutable per-symbol holding. volume is signed,
// positive long.
type positionState struct {
	exchange   string
	volume     decimal.Decimal
	avgEntry   decimal.Decimal
	lastPrice  decimal.Decimal
	realized   decimal.Decimal
	commission decimal.Decimal
}

func newLedger(capital float64, size float64) *ledger {
	initial := decimal.NewFromFloat(capital)

	return &ledger{
		capital:   initial,
		cash:      initial,
		size:      decimal.NewFromFloat(size),
		positions: make(map[string]*positionState),
	}
}

func (l *ledger) state(symbol string) *positionState {
	pos, ok := l.positions[symbol]
	if !ok {
		pos = &positionState{}
		l.positions[symbol] = pos
	}

	return pos
}

// apply books one fill: blends or reduces the position, computes the
// trade's net PnL in place, and moves cash by commission plus the
// signed traded value. slippagePerUnit is the configured offset
// already embedded in trade.Price, accumulated here as a cost metric.
func (l *ledger) apply(trade *types.Trade, slippagePerUnit float64) {
	pos := l.state(trade.Symbol)
	pos.exchange = trade.Exchange

	fill := decimal.NewFromFloat(trade.Price)
	volume := decimal.NewFromFloat(trade.Volume)
	comm := decimal.NewFromFloat(trade.Commission)
	delta := decimal.NewFromFloat(trade.PositionDelta())

	pnl := comm.Neg()

	if trade.Offset == types.OffsetOpen {
		held := pos.volume.Abs()
		total := held.Add(volume)

		if total.IsPositive() {
			pos.avgEntry = pos.avgEntry.Mul(held).Add(fill.Mul(volume)).Div(total)
		}
	} else {
		gross := fill.Sub(pos.avgEntry).Mul(volume).Mul(l.size)
		if trade.Side == types.SideShort {
			// Closing a short: profit when the fill is below entry.
			gross = pos.avgEntry.Sub(fill).Mul(volume).Mul(l.size)
		}

		pnl = gross.Sub(comm)
	}

	pos.volume = pos.volume.Add(delta)
	if pos.volume.IsZero() {
		pos.avgEntry = decimal.Zero
	}

	pos.realized = pos.realized.Add(pnl)
	pos.commission = pos.commission.Add(comm)

	l.realized = l.realized.Add(pnl)
	l.commission = l.commission.Add(comm)
	l.cash = l.cash.Sub(comm).Sub(delta.Mul(fill).Mul(l.size))

	value := fill.Mul(volume).Mul(l.size)
	l.turnover = l.turnover.Add(value)
	l.slippageCost = l.slippageCost.Add(decimal.NewFromFloat(slippagePerUnit).Mul(volume).Mul(l.size))

	trade.PnL, _ = pnl.Float64()
}

// mark re-marks one symbol at a new price. Called once per bar close
// (tick mode: per last price), never per trade.
func (l *ledger) mark(symbol string, price float64) {
	pos, ok := l.positions[symbol]
	if !ok {
		pos = l.state(symbol)
	}

	pos.lastPrice = decimal.NewFromFloat(price)
}

func (pos *positionState) unrealized(size decimal.Decimal) decimal.Decimal {
	if pos.volume.IsZero() {
		return decimal.Zero
	}

	return pos.lastPrice.Sub(pos.avgEntry).Mul(pos.volume).Mul(size)
}

// position returns a snapshot of one symbol's holding. Unknown
// symbols snapshot as flat.
func (l *ledger) position(symbol string) types.Position {
	pos, ok := l.positions[symbol]
	if !ok {
		return types.Position{Symbol: symbol}
	}

	volume, _ := pos.volume.Float64()
	avgEntry, _ := pos.avgEntry.Float64()
	lastPrice, _ := pos.lastPrice.Float64()
	realized, _ := pos.realized.Float64()
	unrealized, _ := pos.unrealized(l.size).Float64()
	comm, _ := pos.commission.Float64()

	return types.Position{
		Symbol:        symbol,
		Exchange:      pos.exchange,
		Volume:        volume,
		AvgEntryPrice: avgEntry,
		LastPrice:     lastPrice,
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		Commission:    comm,
	}
}

// volumes returns the signed net volume per symbol, flat symbols
// included.
func (l *ledger) volumes() map[string]float64 {
	out := make(map[string]float64, len(l.positions))

	for symbol, pos := range l.positions {
		out[symbol], _ = pos.volume.Float64()
	}

	return out
}

func (l *ledger) unrealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range l.positions {
		total = total.Add(pos.unrealized(l.size))
	}

	return total
}

// equity is cash plus the marked value of every open position, which
// equals capital + realized + unrealized by the cash invariant.
func (l *ledger) equity() decimal.Decimal {
	total := l.cash

	for _, pos := range l.positions {
		total = total.Add(pos.volume.Mul(pos.lastPrice).Mul(l.size))
	}

	return total
}

// account snapshots the cash view.
func (l *ledger) account() types.Account {
	capital, _ := l.capital.Float64()
	cash, _ := l.cash.Float64()
	equity, _ := l.equity().Float64()
	realized, _ := l.realized.Float64()
	unrealized, _ := l.unrealizedPnL().Float64()
	comm, _ := l.commission.Float64()

	return types.Account{
		InitialCapital: capital,
		Cash:           cash,
		Equity:         equity,
		RealizedPnL:    realized,
		UnrealizedPnL:  unrealized,
		Commission:     comm,
	}
}

func (l *ledger) equityFloat() float64 {
	equity, _ := l.equity().Float64()

	return equity
}

func (l *ledger) totalCommission() float64 {
	v, _ := l.commission.Float64()

	return v
}

func (l *ledger) totalSlippage() float64 {
	v, _ := l.slippageCost.Float64()

	return v
}

func (l *ledger) totalTurnover() float64 {
	v, _ := l.turnover.Float64()

	return v
}
