package types

// DailyResult is the sealed accounting of one calendar date of the
// replay. A record is appended when the date component of the data
// stream changes and once more when the replay ends; sealed records
// are never modified.
type DailyResult struct {
	// Date is the calendar date in YYYY-MM-DD form.
	Date string `yaml:"date" json:"date" csv:"date"`
	// ClosePrices holds the day's final close per symbol, the prices
	// used to mark open positions at the seal.
	ClosePrices map[string]float64 `yaml:"close_prices" json:"close_prices"`
	// PreCloses holds the previous day's final close per symbol.
	PreCloses  map[string]float64 `yaml:"pre_closes" json:"pre_closes"`
	TradeCount int                `yaml:"trade_count" json:"trade_count" csv:"trade_count"`
	// Turnover is the day's total traded value, fill price times
	// volume times contract size summed over fills.
	Turnover   float64 `yaml:"turnover" json:"turnover" csv:"turnover"`
	Commission float64 `yaml:"commission" json:"commission" csv:"commission"`
	// Slippage is the day's total slippage cost in currency.
	Slippage float64 `yaml:"slippage" json:"slippage" csv:"slippage"`
	// HoldingPnL is the profit of positions carried into the day,
	// start volume times the close-over-preclose move.
	HoldingPnL float64 `yaml:"holding_pnl" json:"holding_pnl" csv:"holding_pnl"`
	// TradingPnL is the profit of the day's fills measured against the
	// day's close.
	TradingPnL float64 `yaml:"trading_pnl" json:"trading_pnl" csv:"trading_pnl"`
	// TotalPnL = HoldingPnL + TradingPnL, before costs.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl" csv:"total_pnl"`
	// NetPnL is TotalPnL minus commission and slippage. It equals the
	// day-over-day equity delta by construction.
	NetPnL float64 `yaml:"net_pnl" json:"net_pnl" csv:"net_pnl"`
	// Balance is the end-of-day equity: previous balance plus NetPnL.
	Balance float64 `yaml:"balance" json:"balance" csv:"balance"`
}
