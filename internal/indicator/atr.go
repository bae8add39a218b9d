package indicator

import (
	"fmt"
	"math"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// ATR implements the Average True Range with Wilder smoothing.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Period returns the minimum window length. ATR needs one extra bar
// because the true range uses the previous close.
func (a *ATR) Period() int {
	return a.period + 1
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
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

	a.period = period

	return nil
}

// Compute seeds with the simple average of the first period true
// ranges and applies Wilder smoothing to the rest of the window.
func (a *ATR) Compute(bars []types.Bar) (float64, error) {
	required := a.period + 1
	if len(bars) < required {
		return 0, errors.NewInsufficientDataErrorf(required, len(bars), windowSymbol(bars), "insufficient data points for ATR: required %d, got %d", required, len(bars))
	}

	trueRanges := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trueRanges = append(trueRanges, trueRange(bars[i], bars[i-1].Close))
	}

	atr := mean(trueRanges[:a.period])
	for _, tr := range trueRanges[a.period:] {
		atr = (atr*float64(a.period-1) + tr) / float64(a.period)
	}

	return atr, nil
}

// trueRange is the greatest of the bar range, the gap up from the
// previous close, and the gap down from the previous close.
func trueRange(bar types.Bar, prevClose float64) float64 {
	highLow := bar.High - bar.Low
	highClose := math.Abs(bar.High - prevClose)
	lowClose := math.Abs(bar.Low - prevClose)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
