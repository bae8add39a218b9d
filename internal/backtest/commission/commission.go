// Package commission prices the fee charged on each fill. Models are
// stateless; the engine picks one from the run configuration and calls
// it once per trade.
package commission

type Model interface {
	// Calculate returns the fee in account currency for a fill at the
	// given price and volume, scaled by the instrument contract size.
	Calculate(price float64, volume float64, size float64) float64
}

// Scheme selects a commission model in the run configuration.
type Scheme string

const (
	// SchemeRate charges a fraction of the traded value.
	SchemeRate Scheme = "rate"
	// SchemeZero charges nothing.
	SchemeZero Scheme = "zero"
	// SchemePerShare charges per traded unit with a minimum per fill.
	SchemePerShare Scheme = "per_share"
)

var AllSchemes = []any{
	SchemeRate,
	SchemeZero,
	SchemePerShare,
}

// ForScheme returns the model for a configured scheme. The rate only
// applies to SchemeRate; an unknown or empty scheme falls back to it.
func ForScheme(scheme Scheme, rate float64) Model {
	switch scheme {
	case SchemeZero:
		return NewZero()
	case SchemePerShare:
		return NewPerShare(DefaultPerShareFee, DefaultMinimumFee)
	case SchemeRate:
		return NewRate(rate)
	default:
		return NewRate(rate)
	}
}
