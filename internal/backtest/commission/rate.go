package commission

import "github.com/shopspring/decimal"

// RateCommission charges price * volume * size * rate per fill.
type RateCommission struct {
	rate float64
}

func NewRate(rate float64) Model {
	return &RateCommission{rate: rate}
}

func (c *RateCommission) Calculate(price float64, volume float64, size float64) float64 {
	fee := decimal.NewFromFloat(price).
		Mul(decimal.NewFromFloat(volume)).
		Mul(decimal.NewFromFloat(size)).
		Mul(decimal.NewFromFloat(c.rate))

	result, _ := fee.Float64()

	return result
}
