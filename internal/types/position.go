package types

import "github.com/shopspring/decimal"

// Position is the current net holding of one symbol. Volume is signed:
// positive for a long position, negative for a short one. Positions
// never flip sign in a single fill because close volume beyond the
// held amount is rejected at submission.
type Position struct {
	Symbol   string  `yaml:"symbol" json:"symbol" csv:"symbol"`
	Exchange string  `yaml:"exchange" json:"exchange" csv:"exchange"`
	Volume   float64 `yaml:"volume" json:"volume" csv:"volume"`
	// AvgEntryPrice is the volume-weighted entry price of the current
	// exposure. Unchanged by closes, re-blended by opens.
	AvgEntryPrice float64 `yaml:"avg_entry_price" json:"avg_entry_price" csv:"avg_entry_price"`
	// LastPrice is the most recent mark price, updated once per bar
	// close (tick mode: per tick's last price).
	LastPrice     float64 `yaml:"last_price" json:"last_price" csv:"last_price"`
	RealizedPnL   float64 `yaml:"realized_pnl" json:"realized_pnl" csv:"realized_pnl"`
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl" csv:"unrealized_pnl"`
	Commission    float64 `yaml:"commission" json:"commission" csv:"commission"`
}

func (p *Position) IsFlat() bool {
	return p.Volume == 0
}

func (p *Position) IsLong() bool {
	return p.Volume > 0
}

func (p *Position) IsShort() bool {
	return p.Volume < 0
}

// MarketValue is the signed marked value of the holding at the last
// mark price, scaled by the instrument's contract size.
func (p *Position) MarketValue(size float64) float64 {
	v := decimal.NewFromFloat(p.Volume).
		Mul(decimal.NewFromFloat(p.LastPrice)).
		Mul(decimal.NewFromFloat(size))

	result, _ := v.Float64()

	return result
}

// UnrealizedAt computes the unrealized profit of the holding marked at
// price: (price - entry) * volume * size, which is negative for a
// short position when price rises because volume is negative.
func (p *Position) UnrealizedAt(price, size float64) float64 {
	if p.Volume == 0 {
		return 0
	}

	v := decimal.NewFromFloat(price).
		Sub(decimal.NewFromFloat(p.AvgEntryPrice)).
		Mul(decimal.NewFromFloat(p.Volume)).
		Mul(decimal.NewFromFloat(size))

	result, _ := v.Float64()

	return result
}
