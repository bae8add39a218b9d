package indicator

import (
	"fmt"
	"math"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for the moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Period returns the minimum window length.
func (bb *BollingerBands) Period() int {
	return bb.period
}

// Config configures the Bollinger Bands indicator. Expected
// parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return fmt.Errorf("Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return fmt.Errorf("invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return fmt.Errorf("stdDev must be positive, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Compute returns the middle band, the simple moving average.
func (bb *BollingerBands) Compute(bars []types.Bar) (float64, error) {
	_, middle, _, err := bb.Bands(bars)

	return middle, err
}

// Bands returns the upper, middle and lower band over the most recent
// period bars. The deviation is the population standard deviation of
// the window, the common Bollinger convention.
func (bb *BollingerBands) Bands(bars []types.Bar) (upper, middle, lower float64, err error) {
	if len(bars) < bb.period {
		return 0, 0, 0, errors.NewInsufficientDataErrorf(bb.period, len(bars), windowSymbol(bars), "insufficient data points for Bollinger Bands: required %d, got %d", bb.period, len(bars))
	}

	window := closes(bars[len(bars)-bb.period:])
	middle = mean(window)

	variance := 0.0
	for _, v := range window {
		diff := v - middle
		variance += diff * diff
	}

	variance /= float64(len(window))
	deviation := math.Sqrt(variance) * bb.stdDev

	return middle + deviation, middle, middle - deviation, nil
}
