package backtest

import (
	"math"

	"github.com/tidemark-labs/tidemark/internal/types"
)

// matchBar decides whether an order fills against a bar and at what
// price. Eligibility by time (the bar must postdate the order) is the
// caller's concern; this is only the price logic.
//
// Limit fills cap at the bar range so a resting buy below the low
// still fills inside the bar. Market orders fill at the open. Stop
// orders trigger on range penetration and fill at the worse of trigger
// and open. Slippage shifts every fill against the strategy.
func matchBar(order *types.Order, bar types.Bar, slippage float64) (float64, bool) {
	buy := order.IsBuy()

	switch order.Type {
	case types.OrderTypeMarket:
		if buy {
			return bar.Open + slippage, true
		}

		return bar.Open - slippage, true

	case types.OrderTypeLimit:
		if buy {
			if bar.Low <= order.Price {
				return math.Min(order.Price, bar.High) + slippage, true
			}

			return 0, false
		}

		if bar.High >= order.Price {
			return math.Max(order.Price, bar.Low) - slippage, true
		}

		return 0, false

	case types.OrderTypeStop:
		if buy {
			if bar.High >= order.Price {
				return math.Max(order.Price, bar.Open) + slippage, true
			}

			return 0, false
		}

		if bar.Low <= order.Price {
			return math.Min(order.Price, bar.Open) - slippage, true
		}

		return 0, false
	}

	return 0, false
}

// matchTick is the tick-mode counterpart: limit and market orders
// execute against the quoted side of the book, stops trigger on the
// last traded price. A zero quote means that side of the book is
// empty, so nothing crosses it.
func matchTick(order *types.Order, tick types.Tick, slippage float64) (float64, bool) {
	buy := order.IsBuy()

	switch order.Type {
	case types.OrderTypeMarket:
		if buy {
			if tick.AskPrice <= 0 {
				return 0, false
			}

			return tick.AskPrice + slippage, true
		}

		if tick.BidPrice <= 0 {
			return 0, false
		}

		return tick.BidPrice - slippage, true

	case types.OrderTypeLimit:
		if buy {
			if tick.AskPrice > 0 && tick.AskPrice <= order.Price {
				return tick.AskPrice + slippage, true
			}

			return 0, false
		}

		if tick.BidPrice > 0 && tick.BidPrice >= order.Price {
			return tick.BidPrice - slippage, true
		}

		return 0, false

	case types.OrderTypeStop:
		if buy {
			if tick.LastPrice >= order.Price {
				return tick.LastPrice + slippage, true
			}

			return 0, false
		}

		if tick.LastPrice <= order.Price {
			return tick.LastPrice - slippage, true
		}

		return 0, false
	}

	return 0, false
}
