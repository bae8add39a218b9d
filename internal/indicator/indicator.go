package indicator

import "github.com/tidemark-labs/tidemark/internal/types"

// Indicator computes one value from a window of bars. Implementations
// are stateless between calls: the caller passes the window (oldest
// first) and the indicator derives its value from the most recent
// bars, so the same window always yields the same value.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() types.IndicatorType
	// Period is the minimum number of bars Compute needs. Longer
	// windows are accepted and improve smoothed indicators.
	Period() int
	// Config reconfigures the indicator parameters.
	Config(params ...any) error
	// Compute derives the indicator value from the window. It returns
	// an InsufficientDataError when the window is shorter than Period.
	Compute(bars []types.Bar) (float64, error)
}

func windowSymbol(bars []types.Bar) string {
	if len(bars) == 0 {
		return ""
	}

	return bars[0].Symbol
}

func closes(bars []types.Bar) []float64 {
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.Close
	}

	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
