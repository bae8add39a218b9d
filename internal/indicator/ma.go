package indicator

import (
	"fmt"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// MA implements the simple moving average of the close price.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Period returns the minimum window length.
func (m *MA) Period() int {
	return m.period
}

// Config configures the MA indicator. Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		// Try to convert from float first
		periodFloat, ok := params[0].(float64)
		if !ok {
			return fmt.Errorf("invalid type for period parameter, expected int or float")
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// Compute averages the close of the most recent period bars.
func (m *MA) Compute(bars []types.Bar) (float64, error) {
	if len(bars) < m.period {
		return 0, errors.NewInsufficientDataErrorf(m.period, len(bars), windowSymbol(bars), "insufficient data points for MA: required %d, got %d", m.period, len(bars))
	}

	window := closes(bars[len(bars)-m.period:])

	return mean(window), nil
}
