package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Statistics is the read-only summary of one backtest run, computed in
// a single pass over the sealed daily results after the replay ends.
// Returns and drawdown are fractions, not percentages.
type Statistics struct {
	// RunID identifies the run that produced these numbers. It is
	// metadata only and never feeds back into the simulation.
	RunID       string    `yaml:"run_id" json:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`

	// StartDate and EndDate are the first and last sealed dates.
	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" json:"end_date"`
	// TotalDays is the number of sealed daily results.
	TotalDays  int `yaml:"total_days" json:"total_days"`
	ProfitDays int `yaml:"profit_days" json:"profit_days"`
	LossDays   int `yaml:"loss_days" json:"loss_days"`

	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	EndBalance     float64 `yaml:"end_balance" json:"end_balance"`

	// TotalReturn is (EndBalance - InitialCapital) / InitialCapital.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// AnnualReturn scales TotalReturn to a 252 trading day year.
	AnnualReturn float64 `yaml:"annual_return" json:"annual_return"`

	// MaxDrawdown is the largest peak-to-trough fall of the balance
	// curve as a fraction of the peak, in [0, 1].
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// MaxDrawdownValue is the same fall in currency.
	MaxDrawdownValue    float64 `yaml:"max_drawdown_value" json:"max_drawdown_value"`
	ReturnDrawdownRatio float64 `yaml:"return_drawdown_ratio" json:"return_drawdown_ratio"`

	DailyMeanReturn float64 `yaml:"daily_mean_return" json:"daily_mean_return"`
	ReturnStd       float64 `yaml:"return_std" json:"return_std"`
	// SharpeRatio is DailyMeanReturn / ReturnStd scaled by sqrt(252),
	// zero when fewer than two daily returns exist or the deviation is
	// zero. No risk-free adjustment is applied.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`

	TotalNetPnL     float64 `yaml:"total_net_pnl" json:"total_net_pnl"`
	TotalCommission float64 `yaml:"total_commission" json:"total_commission"`
	TotalSlippage   float64 `yaml:"total_slippage" json:"total_slippage"`
	TotalTurnover   float64 `yaml:"total_turnover" json:"total_turnover"`
	TotalTradeCount int     `yaml:"total_trade_count" json:"total_trade_count"`

	// WinRate is the fraction of closing trades with positive net PnL.
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
	WinRate       float64 `yaml:"win_rate" json:"win_rate"`
}

// WriteStatistics writes the statistics of a run to a YAML file.
func WriteStatistics(path string, stats Statistics) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics to file: %w", err)
	}

	return nil
}
