package commission

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionTestSuite struct {
	suite.Suite
}

func TestCommissionSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}

func (suite *CommissionTestSuite) TestZeroCommission() {
	model := NewZero()
	suite.NotNil(model)

	tests := []struct {
		name   string
		price  float64
		volume float64
		size   float64
	}{
		{"zero volume", 100, 0, 1},
		{"small fill", 100, 10, 1},
		{"large fill", 50000, 10000, 10},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, model.Calculate(tc.price, tc.volume, tc.size))
		})
	}
}

func (suite *CommissionTestSuite) TestRateCommission() {
	model := NewRate(0.0003)
	suite.NotNil(model)

	tests := []struct {
		name     string
		price    float64
		volume   float64
		size     float64
		expected float64
	}{
		{"zero volume", 100, 0, 1, 0},
		{"unit contract", 100, 10, 1, 0.3},    // 100 * 10 * 1 * 0.0003
		{"scaled contract", 100, 10, 10, 3.0}, // 100 * 10 * 10 * 0.0003
		{"fractional volume", 20000, 0.5, 1, 3.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, model.Calculate(tc.price, tc.volume, tc.size), 1e-12)
		})
	}
}

func (suite *CommissionTestSuite) TestPerShareCommission() {
	model := NewPerShare(DefaultPerShareFee, DefaultMinimumFee)
	suite.NotNil(model)

	tests := []struct {
		name     string
		volume   float64
		expected float64
	}{
		{"zero volume hits minimum", 0, 1.0},
		{"small fill hits minimum", 10, 1.0}, // 0.005 * 10 = 0.05 < 1.0
		{"at threshold", 200, 1.0},           // 0.005 * 200 = 1.0
		{"large fill", 1000, 5.0},            // 0.005 * 1000 = 5.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(123.45, tc.volume, 1))
		})
	}
}

func (suite *CommissionTestSuite) TestForScheme() {
	tests := []struct {
		name     string
		scheme   Scheme
		rate     float64
		price    float64
		volume   float64
		expected float64
	}{
		{"rate scheme", SchemeRate, 0.001, 100, 10, 1.0},
		{"zero scheme ignores rate", SchemeZero, 0.001, 100, 10, 0.0},
		{"per share scheme ignores rate", SchemePerShare, 0.001, 100, 1000, 5.0},
		{"unknown scheme falls back to rate", Scheme("maker_taker"), 0.001, 100, 10, 1.0},
		{"empty scheme falls back to rate", Scheme(""), 0.001, 100, 10, 1.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			model := ForScheme(tc.scheme, tc.rate)
			suite.NotNil(model)
			suite.InDelta(tc.expected, model.Calculate(tc.price, tc.volume, 1), 1e-12)
		})
	}
}

func (suite *CommissionTestSuite) TestAllSchemes() {
	suite.Len(AllSchemes, 3)
	suite.Contains(AllSchemes, SchemeRate)
	suite.Contains(AllSchemes, SchemeZero)
	suite.Contains(AllSchemes, SchemePerShare)
}
