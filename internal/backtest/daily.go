package backtest

import (
	"time"

	"github.com/tidemark-labs/tidemark/internal/types"
)

// dailyAggregator folds the replay into per-date accounting records.
// A date-component change between consecutive data points seals
// exactly one DailyResult; the final day seals when the replay ends.
// Sealed records are immutable.
type dailyAggregator struct {
	size     float64
	slippage float64

	results []types.DailyResult

	curDate    string
	dayTrades  []types.Trade
	startPos   map[string]float64
	lastCloses map[string]float64
	preCloses  map[string]float64

	dayCommission float64
	daySlippage   float64
	dayTurnover   float64

	prevEquity float64
	balance    float64
}

func newDailyAggregator(capital float64, size float64, slippagePerUnit float64) *dailyAggregator {
	return &dailyAggregator{
		size:       size,
		slippage:   slippagePerUnit,
		startPos:   make(map[string]float64),
		lastCloses: make(map[string]float64),
		preCloses:  make(map[string]float64),
		prevEquity: capital,
		balance:    capital,
	}
}

// roll is called before each data point is processed. When the date
// component changes it seals the previous day using the equity left
// by that day's last point, then opens the new day with the current
// position volumes as its starting holdings.
func (d *dailyAggregator) roll(t time.Time, volumes map[string]float64, equity float64) {
	date := t.Format("2006-01-02")
	if date == d.curDate {
		return
	}

	if d.curDate != "" {
		d.seal(equity)
	}

	d.curDate = date
	d.startPos = make(map[string]float64, len(volumes))

	for symbol, volume := range volumes {
		d.startPos[symbol] = volume
	}
}

// observeClose records the latest mark price of a symbol. The value
// standing when the day seals is that day's close.
func (d *dailyAggregator) observeClose(symbol string, price float64) {
	d.lastCloses[symbol] = price
}

// observeTrade accumulates one fill into the open day.
func (d *dailyAggregator) observeTrade(trade types.Trade) {
	d.dayTrades = append(d.dayTrades, trade)
	d.dayCommission += trade.Commission
	d.daySlippage += d.slippage * trade.Volume * d.size
	d.dayTurnover += trade.Price * trade.Volume * d.size
}

// finish seals the final day after the replay ends.
func (d *dailyAggregator) finish(equity float64) {
	if d.curDate == "" {
		return
	}

	d.seal(equity)
	d.curDate = ""
}

// seal closes the open day. NetPnL is the day-over-day equity delta;
// the holding/trading decomposition reconstructs it as
// TotalPnL - commission - slippage because trading PnL is measured
// before friction, against the pre-slippage fill prices.
func (d *dailyAggregator) seal(equity float64) {
	holding := 0.0

	for symbol, volume := range d.startPos {
		if volume == 0 {
			continue
		}

		dayClose, ok := d.lastCloses[symbol]
		if !ok {
			continue
		}

		preClose, ok := d.preCloses[symbol]
		if !ok {
			preClose = dayClose
		}

		holding += volume * (dayClose - preClose) * d.size
	}

	trading := 0.0

	for _, trade := range d.dayTrades {
		dayClose, ok := d.lastCloses[trade.Symbol]
		if !ok {
			continue
		}

		raw := trade.Price
		if trade.IsBuy() {
			raw -= d.slippage
		} else {
			raw += d.slippage
		}

		trading += trade.PositionDelta() * (dayClose - raw) * d.size
	}

	net := equity - d.prevEquity
	d.balance += net

	d.results = append(d.results, types.DailyResult{
		Date:        d.curDate,
		ClosePrices: copyFloatMap(d.lastCloses),
		PreCloses:   copyFloatMap(d.preCloses),
		TradeCount:  len(d.dayTrades),
		Turnover:    d.dayTurnover,
		Commission:  d.dayCommission,
		Slippage:    d.daySlippage,
		HoldingPnL:  holding,
		TradingPnL:  trading,
		TotalPnL:    holding + trading,
		NetPnL:      net,
		Balance:     d.balance,
	})

	d.prevEquity = equity
	d.preCloses = copyFloatMap(d.lastCloses)
	d.dayTrades = nil
	d.dayCommission = 0
	d.daySlippage = 0
	d.dayTurnover = 0
}

func (d *dailyAggregator) all() []types.DailyResult {
	return d.results
}

func copyFloatMap(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}
