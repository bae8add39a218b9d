package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PositionTestSuite struct {
	suite.Suite
}

func TestPositionSuite(t *testing.T) {
	suite.Run(t, new(PositionTestSuite))
}

func (suite *PositionTestSuite) TestDirectionHelpers() {
	long := Position{Symbol: "AAPL", Volume: 100}
	suite.True(long.IsLong())
	suite.False(long.IsShort())
	suite.False(long.IsFlat())

	short := Position{Symbol: "AAPL", Volume: -50}
	suite.True(short.IsShort())
	suite.False(short.IsLong())
	suite.False(short.IsFlat())

	flat := Position{Symbol: "AAPL"}
	suite.True(flat.IsFlat())
	suite.False(flat.IsLong())
	suite.False(flat.IsShort())
}

func (suite *PositionTestSuite) TestMarketValue() {
	pos := Position{Symbol: "AAPL", Volume: 100, LastPrice: 150.0}
	suite.InDelta(15000.0, pos.MarketValue(1), 1e-9)

	pos.Volume = -100
	suite.InDelta(-15000.0, pos.MarketValue(1), 1e-9)

	// Contract size scales the value.
	pos.Volume = 10
	suite.InDelta(15000.0, pos.MarketValue(10), 1e-9)
}

func (suite *PositionTestSuite) TestUnrealizedAtLong() {
	pos := Position{Symbol: "AAPL", Volume: 100, AvgEntryPrice: 100.0}

	suite.InDelta(500.0, pos.UnrealizedAt(105.0, 1), 1e-9)
	suite.InDelta(-500.0, pos.UnrealizedAt(95.0, 1), 1e-9)
	suite.InDelta(0.0, pos.UnrealizedAt(100.0, 1), 1e-9)
}

func (suite *PositionTestSuite) TestUnrealizedAtShort() {
	pos := Position{Symbol: "AAPL", Volume: -100, AvgEntryPrice: 100.0}

	// A short position loses when the price rises.
	suite.InDelta(-500.0, pos.UnrealizedAt(105.0, 1), 1e-9)
	suite.InDelta(500.0, pos.UnrealizedAt(95.0, 1), 1e-9)
}

func (suite *PositionTestSuite) TestUnrealizedAtFlat() {
	pos := Position{Symbol: "AAPL"}
	suite.Equal(0.0, pos.UnrealizedAt(123.45, 1))
}
