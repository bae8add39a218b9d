package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// barsWithCloses builds a minute series with the given closes, spaced
// one minute apart.
func barsWithCloses(symbol string, closes ...float64) []types.Bar {
	start := time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Symbol:   symbol,
			Time:     start.Add(time.Duration(i) * time.Minute),
			Interval: types.Interval1m,
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   1000,
		}
	}

	return bars
}

type MATestSuite struct {
	suite.Suite
}

func TestMASuite(t *testing.T) {
	suite.Run(t, new(MATestSuite))
}

func (suite *MATestSuite) TestNewMA() {
	ma := NewMA()
	suite.NotNil(ma)
	suite.Equal(types.IndicatorTypeMA, ma.Name())
	suite.Equal(20, ma.Period())
}

func (suite *MATestSuite) TestConfig() {
	ma := NewMA()

	suite.NoError(ma.Config(10))
	suite.Equal(10, ma.Period())

	// Float periods are truncated.
	suite.NoError(ma.Config(15.0))
	suite.Equal(15, ma.Period())
}

func (suite *MATestSuite) TestConfigInvalid() {
	ma := NewMA()

	err := ma.Config()
	suite.Error(err)
	suite.Contains(err.Error(), "expects 1 parameter")

	err = ma.Config(10, 20)
	suite.Error(err)

	err = ma.Config("ten")
	suite.Error(err)
	suite.Contains(err.Error(), "invalid type for period")

	err = ma.Config(0)
	suite.Error(err)
	suite.Contains(err.Error(), "must be a positive integer")
}

func (suite *MATestSuite) TestCompute() {
	ma := NewMA()
	suite.NoError(ma.Config(3))

	value, err := ma.Compute(barsWithCloses("AAPL", 10, 20, 30))
	suite.NoError(err)
	suite.InDelta(20.0, value, 1e-9)
}

func (suite *MATestSuite) TestComputeUsesMostRecentWindow() {
	ma := NewMA()
	suite.NoError(ma.Config(3))

	// Only the last three closes participate.
	value, err := ma.Compute(barsWithCloses("AAPL", 100, 200, 10, 20, 30))
	suite.NoError(err)
	suite.InDelta(20.0, value, 1e-9)
}

func (suite *MATestSuite) TestComputeInsufficientData() {
	ma := NewMA()
	suite.NoError(ma.Config(5))

	_, err := ma.Compute(barsWithCloses("AAPL", 10, 20, 30))
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	var insufficientErr *errors.InsufficientDataError
	suite.ErrorAs(err, &insufficientErr)
	suite.Equal(5, insufficientErr.Required)
	suite.Equal(3, insufficientErr.Actual)
	suite.Equal("AAPL", insufficientErr.Symbol)
}
