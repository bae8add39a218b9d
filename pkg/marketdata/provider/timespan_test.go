package provider

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type TimespanTestSuite struct {
	suite.Suite
}

func TestTimespanSuite(t *testing.T) {
	suite.Run(t, new(TimespanTestSuite))
}

func (suite *TimespanTestSuite) TestValidateAcceptsEveryKnownTimespan() {
	for _, timespan := range AllTimespans {
		suite.NoError(timespan.Validate(), string(timespan))
	}
}

func (suite *TimespanTestSuite) TestValidateRejectsUnknownTimespans() {
	for _, raw := range []string{"1s", "3m", "2h", "3d", "60", "", "minute"} {
		err := Timespan(raw).Validate()
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan), raw)
	}
}

func (suite *TimespanTestSuite) TestIntervalMapsDirectly() {
	suite.Equal(types.Interval5m, TimespanFiveMinutes.Interval())
	suite.Equal(types.Interval1M, TimespanOneMonth.Interval())
}

func (suite *TimespanTestSuite) TestMultiplier() {
	tests := []struct {
		timespan Timespan
		want     int
	}{
		{TimespanOneMinute, 1},
		{TimespanFiveMinutes, 5},
		{TimespanFifteenMinutes, 15},
		{TimespanThirtyMinutes, 30},
		{TimespanOneHour, 1},
		{TimespanFourHours, 4},
		{TimespanSixHours, 6},
		{TimespanEightHours, 8},
		{TimespanTwelveHours, 12},
		{TimespanOneDay, 1},
		{TimespanOneWeek, 1},
		{TimespanOneMonth, 1},
	}

	for _, tt := range tests {
		suite.Run(string(tt.timespan), func() {
			suite.Equal(tt.want, tt.timespan.Multiplier())
		})
	}
}

func (suite *TimespanTestSuite) TestPolygonTimespan() {
	tests := []struct {
		timespan Timespan
		want     models.Timespan
	}{
		{TimespanOneMinute, models.Minute},
		{TimespanThirtyMinutes, models.Minute},
		{TimespanOneHour, models.Hour},
		{TimespanTwelveHours, models.Hour},
		{TimespanOneDay, models.Day},
		{TimespanOneWeek, models.Week},
		{TimespanOneMonth, models.Month},
	}

	for _, tt := range tests {
		suite.Run(string(tt.timespan), func() {
			suite.Equal(tt.want, tt.timespan.PolygonTimespan())
		})
	}
}

func (suite *TimespanTestSuite) TestBinanceIntervalMapsDirectly() {
	for _, timespan := range AllTimespans {
		suite.Equal(string(timespan), timespan.BinanceInterval())
	}
}

func (suite *TimespanTestSuite) TestDurationCoversMultiplier() {
	suite.Equal(15*time.Minute, TimespanFifteenMinutes.Duration())
	suite.Equal(8*time.Hour, TimespanEightHours.Duration())
	suite.Equal(7*24*time.Hour, TimespanOneWeek.Duration())
}
