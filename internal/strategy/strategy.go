// Package strategy defines the contract between the replay engine and
// trading strategies. Strategies are plain Go types registered by name;
// the engine drives them through lifecycle hooks and they act back
// through the Context it passes into every hook.
package strategy

import (
	"time"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// Strategy is implemented by every trading strategy. Embed Base to get
// no-op defaults and override only the hooks the strategy needs.
//
// Hooks fire in a fixed order for each replay: Initialize (before any
// data), OnInit (warm-up, trading disabled), OnStart (trading enabled),
// then OnBar or OnTick per data point, with OnOrder and OnTrade fired
// synchronously from inside the matching step, and finally OnStop.
// A hook returning a non-nil error aborts the run.
type Strategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// Initialize receives the strategy parameter YAML before the run.
	Initialize(config string) error

	// OnInit runs once before the replay starts, while trading is
	// still disabled. Warm-up bars are available through the context.
	OnInit(ctx Context) error

	// OnStart runs once after warm-up, with trading enabled.
	OnStart(ctx Context) error

	// OnBar is dispatched for every bar in bar execution mode.
	OnBar(ctx Context, bar types.Bar) error

	// OnTick is dispatched for every tick in tick execution mode.
	OnTick(ctx Context, tick types.Tick) error

	// OnOrder is dispatched when an order reaches a new status.
	OnOrder(ctx Context, order types.Order) error

	// OnTrade is dispatched for every fill.
	OnTrade(ctx Context, trade types.Trade) error

	// OnStop runs once after the last data point, with trading
	// disabled again.
	OnStop(ctx Context) error
}

// Context is the engine surface a strategy calls during hooks. All
// methods are safe to call from any hook; submissions made while
// trading is disabled are rejected with a typed error and the run
// continues.
type Context interface {
	// Submit places an order for the target position direction and
	// offset. The price is rounded to the configured price tick. On
	// acceptance it returns the order id; on rejection it returns 0
	// and the rejection reason.
	Submit(symbol string, side types.Side, offset types.Offset, price float64, volume float64) (int64, error)

	// Buy opens or adds to a long position.
	Buy(symbol string, price float64, volume float64) (int64, error)

	// Sell closes part or all of a long position.
	Sell(symbol string, price float64, volume float64) (int64, error)

	// Short opens or adds to a short position.
	Short(symbol string, price float64, volume float64) (int64, error)

	// Cover closes part or all of a short position.
	Cover(symbol string, price float64, volume float64) (int64, error)

	// SubmitOrder is the full form carrying the order type, used for
	// market and stop orders.
	SubmitOrder(req types.OrderRequest) (int64, error)

	// Cancel cancels a still-active order and dispatches
	// OnOrder(CANCELLED) before returning.
	Cancel(orderID int64) error

	// CancelAll cancels every active order.
	CancelAll() error

	// Position returns the current position of the symbol, zero-valued
	// when flat.
	Position(symbol string) types.Position

	// Account returns the current account snapshot.
	Account() types.Account

	// WarmupBars returns the bars before the configured start time,
	// oldest first. Empty when no start time is set.
	WarmupBars(symbol string) []types.Bar

	// Bars returns the most recent n bars of the symbol including the
	// warm-up prefix, oldest first. Fewer bars are returned when the
	// history is shorter than n.
	Bars(symbol string, n int) []types.Bar

	// Mark records a chart annotation into the run results.
	Mark(mark types.Mark) error

	// Time returns the current replay clock.
	Time() time.Time

	// Logger returns the run logger.
	Logger() *logger.Logger
}
