package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tidemark-labs/tidemark/internal/backtest/commission"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestMaxVolume() {
	tests := []struct {
		name  string
		cash  float64
		price float64
		size  float64
		model commission.Model
		want  float64
	}{
		{
			name:  "no commission",
			cash:  1000,
			price: 100,
			size:  1,
			model: commission.NewZero(),
			want:  10,
		},
		{
			name:  "rate commission shrinks the volume",
			cash:  1000,
			price: 100,
			size:  1,
			model: commission.NewRate(0.01),
			want:  1000.0 / 101.0,
		},
		{
			name:  "contract multiplier scales the cost",
			cash:  1000,
			price: 10,
			size:  10,
			model: commission.NewZero(),
			want:  10,
		},
		{
			name:  "zero cash",
			cash:  0,
			price: 100,
			size:  1,
			model: commission.NewZero(),
			want:  0,
		},
		{
			name:  "negative price",
			cash:  1000,
			price: -1,
			size:  1,
			model: commission.NewZero(),
			want:  0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.InDelta(tt.want, MaxVolume(tt.cash, tt.price, tt.size, tt.model), 1e-9)
		})
	}
}

func (suite *UtilsTestSuite) TestMaxVolumeStaysAffordable() {
	models := []commission.Model{
		commission.NewRate(0.002),
		commission.NewPerShare(0.005, 1),
	}

	for _, model := range models {
		volume := MaxVolume(5000, 37.5, 1, model)
		suite.Greater(volume, 0.0)

		cost := volume*37.5 + model.Calculate(37.5, volume, 1)
		suite.LessOrEqual(cost, 5000+1e-6)
	}
}

func (suite *UtilsTestSuite) TestVolumeForFraction() {
	got := VolumeForFraction(10000, 0.25, 50, 1, commission.NewZero())
	suite.InDelta(50.0, got, 1e-9)

	suite.Zero(VolumeForFraction(10000, 0, 50, 1, commission.NewZero()))
}

func (suite *UtilsTestSuite) TestFloorVolume() {
	suite.InDelta(9.87, FloorVolume(9.8765, 2), 1e-9)
	suite.InDelta(9.0, FloorVolume(9.999, 0), 1e-9)
	suite.InDelta(0.0001, FloorVolume(0.00015, 4), 1e-9)
}
