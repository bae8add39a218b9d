package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Timespan is the bar aggregation period of a download request. The
// values mirror types.Interval so downloaded series plug straight into
// a replay configuration.
type Timespan string

const (
	TimespanOneMinute      Timespan = "1m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

// AllTimespans lists every supported timespan in ascending duration.
var AllTimespans = []Timespan{
	TimespanOneMinute,
	TimespanFiveMinutes,
	TimespanFifteenMinutes,
	TimespanThirtyMinutes,
	TimespanOneHour,
	TimespanFourHours,
	TimespanSixHours,
	TimespanEightHours,
	TimespanTwelveHours,
	TimespanOneDay,
	TimespanOneWeek,
	TimespanOneMonth,
}

// Validate reports whether the timespan is one of the supported values.
func (t Timespan) Validate() error {
	for _, known := range AllTimespans {
		if t == known {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan %q", string(t))
}

// Interval returns the replay interval the timespan corresponds to.
func (t Timespan) Interval() types.Interval {
	return types.Interval(t)
}

// Duration returns the nominal length of one bar, used to estimate how
// many bars a download window covers. Weeks and months use calendar
// approximations.
func (t Timespan) Duration() time.Duration {
	switch t {
	case TimespanOneMinute:
		return time.Minute
	case TimespanFiveMinutes:
		return 5 * time.Minute
	case TimespanFifteenMinutes:
		return 15 * time.Minute
	case TimespanThirtyMinutes:
		return 30 * time.Minute
	case TimespanOneHour:
		return time.Hour
	case TimespanFourHours:
		return 4 * time.Hour
	case TimespanSixHours:
		return 6 * time.Hour
	case TimespanEightHours:
		return 8 * time.Hour
	case TimespanTwelveHours:
		return 12 * time.Hour
	case TimespanOneDay:
		return 24 * time.Hour
	case TimespanOneWeek:
		return 7 * 24 * time.Hour
	case TimespanOneMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Multiplier returns the aggregate multiplier passed to providers that
// split the period into a base unit and a count.
func (t Timespan) Multiplier() int {
	switch t {
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanFourHours:
		return 4
	case TimespanSixHours:
		return 6
	case TimespanEightHours:
		return 8
	case TimespanTwelveHours:
		return 12
	default:
		return 1
	}
}

// PolygonTimespan returns the base unit of the period in Polygon's
// aggregate vocabulary.
func (t Timespan) PolygonTimespan() models.Timespan {
	switch t {
	case TimespanOneMinute, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours:
		return models.Hour
	case TimespanOneDay:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// BinanceInterval returns the kline interval string Binance expects.
// Every supported timespan maps directly.
func (t Timespan) BinanceInterval() string {
	return string(t)
}
