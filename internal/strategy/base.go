package strategy

import "github.com/tidemark-labs/tidemark/internal/types"

// Base provides no-op implementations of every Strategy hook except
// Name. Concrete strategies embed it so they only implement the hooks
// they care about.
type Base struct{}

// Initialize implements Strategy.
func (Base) Initialize(config string) error { return nil }

// OnInit implements Strategy.
func (Base) OnInit(ctx Context) error { return nil }

// OnStart implements Strategy.
func (Base) OnStart(ctx Context) error { return nil }

// OnBar implements Strategy.
func (Base) OnBar(ctx Context, bar types.Bar) error { return nil }

// OnTick implements Strategy.
func (Base) OnTick(ctx Context, tick types.Tick) error { return nil }

// OnOrder implements Strategy.
func (Base) OnOrder(ctx Context, order types.Order) error { return nil }

// OnTrade implements Strategy.
func (Base) OnTrade(ctx Context, trade types.Trade) error { return nil }

// OnStop implements Strategy.
func (Base) OnStop(ctx Context) error { return nil }
