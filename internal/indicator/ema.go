package indicator

import (
	"fmt"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// EMA implements the exponential moving average of the close price.
// The average is seeded with the simple average of the first period
// closes of the window and folded forward over the rest, so longer
// windows converge toward the streaming value.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Period returns the minimum window length.
func (e *EMA) Period() int {
	return e.period
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	e.period = period

	return nil
}

// Compute folds the smoothing factor 2/(period+1) over the window.
func (e *EMA) Compute(bars []types.Bar) (float64, error) {
	if len(bars) < e.period {
		return 0, errors.NewInsufficientDataErrorf(e.period, len(bars), windowSymbol(bars), "insufficient data points for EMA: required %d, got %d", e.period, len(bars))
	}

	return emaSeries(closes(bars), e.period), nil
}

// emaSeries seeds with the simple average of the first period values
// and applies the standard smoothing to the remainder. The caller
// guarantees len(values) >= period >= 1.
func emaSeries(values []float64, period int) float64 {
	value := mean(values[:period])
	multiplier := 2.0 / (float64(period) + 1.0)

	for _, v := range values[period:] {
		value = (v-value)*multiplier + value
	}

	return value
}
