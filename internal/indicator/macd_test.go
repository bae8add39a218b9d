package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func (suite *MACDTestSuite) TestNewMACD() {
	macd := NewMACD()
	suite.NotNil(macd)
	suite.Equal(types.IndicatorTypeMACD, macd.Name())
	suite.Equal(35, macd.Period())
}

func (suite *MACDTestSuite) TestConfig() {
	macd := NewMACD()
	suite.NoError(macd.Config(5, 10, 3))
	suite.Equal(13, macd.Period())

	suite.Error(macd.Config(5, 10))
	suite.Error(macd.Config(5, 10, 0))
	suite.Error(macd.Config("5", 10, 3))
	// Fast period must stay below the slow one.
	suite.Error(macd.Config(10, 5, 3))
}

func (suite *MACDTestSuite) TestComputeFlatSeriesIsZero() {
	macd := NewMACD()
	suite.NoError(macd.Config(3, 5, 2))

	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100.0
	}

	value, err := macd.Compute(barsWithCloses("AAPL", closes...))
	suite.NoError(err)
	suite.InDelta(0.0, value, 1e-9)
}

func (suite *MACDTestSuite) TestComputeTrendingSeriesIsPositive() {
	macd := NewMACD()
	suite.NoError(macd.Config(3, 5, 2))

	closes := make([]float64, 12)
	for i := range closes {
		closes[i] = 100.0 + float64(i)*2
	}

	// In a steady uptrend the fast EMA rides above the slow EMA.
	value, signal, histogram, err := macd.(*MACD).Lines(barsWithCloses("AAPL", closes...))
	suite.NoError(err)
	suite.Greater(value, 0.0)
	suite.Greater(signal, 0.0)
	suite.InDelta(value-signal, histogram, 1e-9)
}

func (suite *MACDTestSuite) TestComputeInsufficientData() {
	macd := NewMACD()

	_, err := macd.Compute(barsWithCloses("AAPL", 1, 2, 3))
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}
