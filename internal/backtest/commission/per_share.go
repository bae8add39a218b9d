package commission

const (
	// DefaultPerShareFee mirrors a typical US equity broker tier.
	DefaultPerShareFee = 0.005
	// DefaultMinimumFee is the floor charged on any non-empty fill.
	DefaultMinimumFee = 1.0
)

// PerShareCommission charges perShare * volume with a per-fill
// minimum, ignoring price and contract size.
type PerShareCommission struct {
	perShare float64
	minimum  float64
}

func NewPerShare(perShare float64, minimum float64) Model {
	return &PerShareCommission{
		perShare: perShare,
		minimum:  minimum,
	}
}

func (c *PerShareCommission) Calculate(price float64, volume float64, size float64) float64 {
	fee := c.perShare * volume
	if fee < c.minimum {
		return c.minimum
	}

	return fee
}
