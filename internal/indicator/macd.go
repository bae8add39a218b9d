package indicator

import (
	"fmt"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// MACD implements the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Period returns the minimum window length: enough bars to seed the
// slow EMA and then produce signalPeriod points of the MACD line.
func (m *MACD) Period() int {
	return m.slowPeriod + m.signalPeriod
}

// Config configures the MACD indicator. Expected parameters:
// fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return fmt.Errorf("Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	periods := make([]int, 3)

	for i, param := range params {
		period, ok := param.(int)
		if !ok {
			return fmt.Errorf("invalid type for period parameter, expected int")
		}

		if period <= 0 {
			return fmt.Errorf("period must be a positive integer, got %d", period)
		}

		periods[i] = period
	}

	if periods[0] >= periods[1] {
		return fmt.Errorf("fast period %d must be smaller than slow period %d", periods[0], periods[1])
	}

	m.fastPeriod = periods[0]
	m.slowPeriod = periods[1]
	m.signalPeriod = periods[2]

	return nil
}

// Compute returns the MACD line, the fast EMA minus the slow EMA.
func (m *MACD) Compute(bars []types.Bar) (float64, error) {
	macd, _, _, err := m.Lines(bars)

	return macd, err
}

// Lines returns the MACD line, the signal line and the histogram.
func (m *MACD) Lines(bars []types.Bar) (macd, signal, histogram float64, err error) {
	required := m.Period()
	if len(bars) < required {
		return 0, 0, 0, errors.NewInsufficientDataErrorf(required, len(bars), windowSymbol(bars), "insufficient data points for MACD: required %d, got %d", required, len(bars))
	}

	values := closes(bars)

	// Build the MACD series from the first index where the slow EMA
	// exists, then smooth it into the signal line.
	macdSeries := make([]float64, 0, len(values)-m.slowPeriod+1)
	for i := m.slowPeriod; i <= len(values); i++ {
		window := values[:i]
		fast := emaSeries(window, m.fastPeriod)
		slow := emaSeries(window, m.slowPeriod)
		macdSeries = append(macdSeries, fast-slow)
	}

	macd = macdSeries[len(macdSeries)-1]
	signal = emaSeries(macdSeries, m.signalPeriod)
	histogram = macd - signal

	return macd, signal, histogram, nil
}
