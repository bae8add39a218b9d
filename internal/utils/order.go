// Package utils holds order sizing arithmetic shared by strategies.
package utils

import (
	"math"

	"github.com/tidemark-labs/tidemark/internal/backtest/commission"
)

// MaxVolume returns the largest volume affordable with the given cash,
// net of commission. size is the contract multiplier of the venue. The
// estimate starts commission-free and shrinks until the total cost
// fits, which converges in a few rounds for every monotonic model.
func MaxVolume(cash float64, price float64, size float64, model commission.Model) float64 {
	if cash <= 0 || price <= 0 || size <= 0 {
		return 0
	}

	volume := cash / (price * size)

	for i := 0; i < 10; i++ {
		cost := volume*price*size + model.Calculate(price, volume, size)
		if cost <= cash {
			break
		}

		volume *= cash / cost
	}

	return volume
}

// VolumeForFraction sizes an order with the given fraction of cash.
func VolumeForFraction(cash float64, fraction float64, price float64, size float64, model commission.Model) float64 {
	return MaxVolume(cash*fraction, price, size, model)
}

// FloorVolume rounds the volume down to decimals places, so venues
// with lot precision never reject the order.
func FloorVolume(volume float64, decimals int) float64 {
	multiplier := math.Pow10(decimals)

	return math.Floor(volume*multiplier) / multiplier
}
