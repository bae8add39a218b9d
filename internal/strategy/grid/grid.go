// Package grid implements a grid trading strategy. It rests buy orders
// on levels below the market and sell orders above, and after every
// fill it places the opposite order one level away, harvesting
// oscillation.
package grid

import (
	"math"

	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Name is the registry name of the strategy.
const Name = "grid"

// Config holds the strategy parameters.
type Config struct {
	GridSize  float64 `yaml:"grid_size" jsonschema:"title=Grid Size,description=Price distance between adjacent levels,default=10"`
	GridNum   int     `yaml:"grid_num" jsonschema:"title=Grid Count,description=Number of resting levels on each side of the market,minimum=1,default=5"`
	OrderSize float64 `yaml:"order_size" jsonschema:"title=Order Size,description=Volume of each grid order,default=0.1"`
}

type slot struct {
	level int
	buy   bool
}

// Grid trades one symbol, the first one it sees. The grid anchors on
// the first observed price and every level is an integer index into
// that price ladder, so order lookups never depend on float equality.
// Sell levels are only rested while held volume covers them, which
// keeps the strategy valid on spot instruments.
type Grid struct {
	strategy.Base
	config Config

	symbol    string
	basePrice float64
	anchored  bool

	buyOrders  map[int]int64 // level index -> order id
	sellOrders map[int]int64
	orderSlots map[int64]slot // order id -> level
}

// New creates the strategy with default parameters. Initialize
// overrides them from the config YAML.
func New() *Grid {
	return &Grid{
		config: Config{
			GridSize:  10.0,
			GridNum:   5,
			OrderSize: 0.1,
		},
		buyOrders:  make(map[int]int64),
		sellOrders: make(map[int]int64),
		orderSlots: make(map[int64]slot),
	}
}

// Name implements strategy.Strategy.
func (g *Grid) Name() string { return Name }

// Initialize implements strategy.Strategy.
func (g *Grid) Initialize(config string) error {
	if config != "" {
		if err := yaml.Unmarshal([]byte(config), &g.config); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse grid config", err)
		}
	}

	if g.config.GridSize <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "grid_size must be positive, got %f", g.config.GridSize)
	}

	if g.config.GridNum <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "grid_num must be positive, got %d", g.config.GridNum)
	}

	if g.config.OrderSize <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "order_size must be positive, got %f", g.config.OrderSize)
	}

	g.symbol = ""
	g.anchored = false
	g.buyOrders = make(map[int]int64)
	g.sellOrders = make(map[int]int64)
	g.orderSlots = make(map[int64]slot)

	return nil
}

// OnBar implements strategy.Strategy.
func (g *Grid) OnBar(ctx strategy.Context, bar types.Bar) error {
	g.onPrice(ctx, bar.Symbol, bar.Close)

	return nil
}

// OnTick implements strategy.Strategy.
func (g *Grid) OnTick(ctx strategy.Context, tick types.Tick) error {
	g.onPrice(ctx, tick.Symbol, tick.LastPrice)

	return nil
}

// OnOrder implements strategy.Strategy. Cancelled and rejected orders
// free their level; fills are cleaned up in OnTrade where the fill
// price is known.
func (g *Grid) OnOrder(ctx strategy.Context, order types.Order) error {
	if order.Status != types.OrderStatusCancelled && order.Status != types.OrderStatusRejected {
		return nil
	}

	g.release(order.ID)

	return nil
}

// OnTrade implements strategy.Strategy. Every fill places the opposite
// order one level away.
func (g *Grid) OnTrade(ctx strategy.Context, trade types.Trade) error {
	s, ok := g.orderSlots[trade.OrderID]
	if !ok {
		return nil
	}

	g.release(trade.OrderID)

	if s.buy {
		g.placeSell(ctx, s.level+1)

		return nil
	}

	g.placeBuy(ctx, s.level-1)

	return nil
}

// OnStop implements strategy.Strategy.
func (g *Grid) OnStop(ctx strategy.Context) error {
	return ctx.CancelAll()
}

func (g *Grid) onPrice(ctx strategy.Context, symbol string, price float64) {
	if g.symbol == "" {
		g.symbol = symbol
	}

	if symbol != g.symbol {
		return
	}

	if !g.anchored {
		g.basePrice = math.Round(price/g.config.GridSize) * g.config.GridSize
		g.anchored = true
		ctx.Logger().Debug("grid anchored",
			zap.String("symbol", symbol),
			zap.Float64("base_price", g.basePrice))
	}

	g.checkGridOrders(ctx, price)
}

// checkGridOrders rests missing buy levels strictly below the price
// and missing sell levels strictly above it, sells capped by uncommitted
// held volume.
func (g *Grid) checkGridOrders(ctx strategy.Context, price float64) {
	pos := (price - g.basePrice) / g.config.GridSize
	below := int(math.Ceil(pos-1e-9)) - 1
	above := int(math.Floor(pos+1e-9)) + 1

	for i := 0; i < g.config.GridNum; i++ {
		g.placeBuy(ctx, below-i)
	}

	held := ctx.Position(g.symbol).Volume
	committed := float64(len(g.sellOrders)) * g.config.OrderSize
	available := int(math.Floor((held - committed + 1e-9) / g.config.OrderSize))

	for i := 0; i < g.config.GridNum && available > 0; i++ {
		if g.placeSell(ctx, above+i) {
			available--
		}
	}
}

func (g *Grid) placeBuy(ctx strategy.Context, level int) bool {
	if _, exists := g.buyOrders[level]; exists {
		return false
	}

	price := g.levelPrice(level)
	if price <= 0 {
		return false
	}

	id, err := ctx.Buy(g.symbol, price, g.config.OrderSize)
	if err != nil {
		ctx.Logger().Debug("grid buy rejected",
			zap.Int("level", level),
			zap.Float64("price", price),
			zap.Error(err))

		return false
	}

	g.buyOrders[level] = id
	g.orderSlots[id] = slot{level: level, buy: true}

	return true
}

func (g *Grid) placeSell(ctx strategy.Context, level int) bool {
	if _, exists := g.sellOrders[level]; exists {
		return false
	}

	price := g.levelPrice(level)
	if price <= 0 {
		return false
	}

	id, err := ctx.Sell(g.symbol, price, g.config.OrderSize)
	if err != nil {
		ctx.Logger().Debug("grid sell rejected",
			zap.Int("level", level),
			zap.Float64("price", price),
			zap.Error(err))

		return false
	}

	g.sellOrders[level] = id
	g.orderSlots[id] = slot{level: level, buy: false}

	return true
}

func (g *Grid) release(orderID int64) {
	s, ok := g.orderSlots[orderID]
	if !ok {
		return
	}

	delete(g.orderSlots, orderID)

	if s.buy {
		if id, exists := g.buyOrders[s.level]; exists && id == orderID {
			delete(g.buyOrders, s.level)
		}

		return
	}

	if id, exists := g.sellOrders[s.level]; exists && id == orderID {
		delete(g.sellOrders, s.level)
	}
}

func (g *Grid) levelPrice(level int) float64 {
	return g.basePrice + float64(level)*g.config.GridSize
}
