package types

// Account is a snapshot of the ledger's cash view. The identity
// Equity = InitialCapital + RealizedPnL + UnrealizedPnL holds after
// every trade and every mark.
type Account struct {
	// InitialCapital is the starting cash configured for the run.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	// Cash is the current balance excluding open position value.
	Cash float64 `yaml:"cash" json:"cash"`
	// Equity is cash plus the marked value of all open positions.
	Equity float64 `yaml:"equity" json:"equity"`
	// RealizedPnL is the cumulative net profit of closed exposure,
	// commissions included.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// UnrealizedPnL is the marked profit of open exposure.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Commission is the total commission charged so far.
	Commission float64 `yaml:"commission" json:"commission"`
}

// Return is the fractional return on initial capital so far.
func (a *Account) Return() float64 {
	if a.InitialCapital == 0 {
		return 0
	}

	return (a.Equity - a.InitialCapital) / a.InitialCapital
}
