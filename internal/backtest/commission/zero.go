package commission

// ZeroCommission charges no fees. Useful for isolating strategy
// behavior from cost effects in tests and optimizer sweeps.
type ZeroCommission struct {
}

func NewZero() Model {
	return &ZeroCommission{}
}

func (c *ZeroCommission) Calculate(price float64, volume float64, size float64) float64 {
	return 0
}
