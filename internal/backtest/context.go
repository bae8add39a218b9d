package backtest

import (
	"math"
	"time"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
)

// engineContext is the strategy.Context the engine passes into every
// hook. It validates submissions against the run configuration and
// current ledger state; rejected orders are recorded with status
// REJECTED and a reason but never enter the pending queue.
type engineContext struct {
	engine *Engine
}

var _ strategy.Context = (*engineContext)(nil)

// Submit places a limit order.
func (c *engineContext) Submit(symbol string, side types.Side, offset types.Offset, price float64, volume float64) (int64, error) {
	return c.submit(types.OrderRequest{
		Symbol: symbol,
		Side:   side,
		Offset: offset,
		Type:   types.OrderTypeLimit,
		Price:  price,
		Volume: volume,
	})
}

// Buy opens or adds to a long position.
func (c *engineContext) Buy(symbol string, price float64, volume float64) (int64, error) {
	return c.Submit(symbol, types.SideLong, types.OffsetOpen, price, volume)
}

// Sell closes part or all of a long position.
func (c *engineContext) Sell(symbol string, price float64, volume float64) (int64, error) {
	return c.Submit(symbol, types.SideLong, types.OffsetClose, price, volume)
}

// Short opens or adds to a short position.
func (c *engineContext) Short(symbol string, price float64, volume float64) (int64, error) {
	return c.Submit(symbol, types.SideShort, types.OffsetOpen, price, volume)
}

// Cover closes part or all of a short position.
func (c *engineContext) Cover(symbol string, price float64, volume float64) (int64, error) {
	return c.Submit(symbol, types.SideShort, types.OffsetClose, price, volume)
}

// SubmitOrder is the full form carrying the order type.
func (c *engineContext) SubmitOrder(req types.OrderRequest) (int64, error) {
	return c.submit(req)
}

// submit runs the validation chain. The first failed check rejects the
// request; the rejection is logged at Debug, recorded in the order log
// and returned as a typed error. The run always continues.
func (c *engineContext) submit(req types.OrderRequest) (int64, error) {
	e := c.engine

	reject := func(reason string, err error) (int64, error) {
		order := c.requestToOrder(req)
		rejected := e.book.recordRejected(order, reason)
		e.log.Debug("Order rejected",
			zap.Int64("order_id", rejected.ID),
			zap.String("symbol", req.Symbol),
			zap.String("reason", reason),
			zap.Error(err),
		)

		return 0, err
	}

	if !e.tradingEnabled {
		return reject(types.OrderReasonTradingDisabled,
			errors.Newf(errors.ErrCodeTradingDisabled, "trading is disabled, order for %s not accepted", req.Symbol))
	}

	if !e.knownSymbol(req.Symbol) {
		return reject(types.OrderReasonUnknownSymbol,
			errors.Newf(errors.ErrCodeInvalidOrder, "symbol %s is not part of this run", req.Symbol))
	}

	if req.Volume <= 0 {
		return reject(types.OrderReasonInvalidVolume,
			errors.Newf(errors.ErrCodeInvalidOrder, "order volume must be positive, got %v", req.Volume))
	}

	if req.Type != types.OrderTypeMarket && req.Price <= 0 {
		return reject(types.OrderReasonInvalidPrice,
			errors.Newf(errors.ErrCodeInvalidOrder, "%s order for %s requires a positive price, got %v", req.Type, req.Symbol, req.Price))
	}

	if err := req.Validate(); err != nil {
		return reject(types.OrderReasonInvalidRequest, err)
	}

	if e.config.Instrument == InstrumentSpot && req.Side == types.SideShort {
		return reject(types.OrderReasonUnsupportedSide,
			errors.Newf(errors.ErrCodeUnsupportedSide, "spot instruments do not support the SHORT side"))
	}

	if req.Offset == types.OffsetClose {
		held := e.ledger.position(req.Symbol).Volume
		if req.Side == types.SideShort {
			held = -held
		}

		if req.Volume > held {
			return reject(types.OrderReasonInsufficientPosition,
				errors.Newf(errors.ErrCodeInsufficientPosition,
					"close volume %v exceeds held %s volume %v for %s", req.Volume, req.Side, held, req.Symbol))
		}
	}

	order := c.requestToOrder(req)
	accepted := e.book.add(order)

	e.log.Debug("Order submitted",
		zap.Int64("order_id", accepted.ID),
		zap.String("symbol", accepted.Symbol),
		zap.String("side", string(accepted.Side)),
		zap.String("offset", string(accepted.Offset)),
		zap.String("type", string(accepted.Type)),
		zap.Float64("price", accepted.Price),
		zap.Float64("volume", accepted.Volume),
	)

	return accepted.ID, nil
}

// requestToOrder stamps the request with the run clock and rounds the
// price to the configured tick grid.
func (c *engineContext) requestToOrder(req types.OrderRequest) types.Order {
	price := req.Price
	if tick := c.engine.config.PriceTick; tick > 0 && req.Type != types.OrderTypeMarket {
		price = math.Round(price/tick) * tick
	}

	return types.Order{
		Symbol:    req.Symbol,
		Exchange:  c.engine.config.Exchange,
		Side:      req.Side,
		Offset:    req.Offset,
		Type:      req.Type,
		Price:     price,
		Volume:    req.Volume,
		Reason:    types.OrderReasonStrategy,
		CreatedAt: c.engine.clock,
	}
}

// Cancel cancels a still-active order and dispatches the CANCELLED
// status synchronously.
func (c *engineContext) Cancel(orderID int64) error {
	e := c.engine

	cancelled, err := e.book.cancel(orderID, types.OrderReasonUserCancel, e.clock)
	if err != nil {
		return err
	}

	e.log.Debug("Order cancelled", zap.Int64("order_id", orderID))

	return e.dispatchOrder(*cancelled)
}

// CancelAll cancels every active order.
func (c *engineContext) CancelAll() error {
	for _, id := range c.engine.book.pendingIDs() {
		if err := c.Cancel(id); err != nil {
			return err
		}
	}

	return nil
}

func (c *engineContext) Position(symbol string) types.Position {
	return c.engine.ledger.position(symbol)
}

func (c *engineContext) Account() types.Account {
	return c.engine.ledger.account()
}

func (c *engineContext) WarmupBars(symbol string) []types.Bar {
	return c.engine.feed.warmupBars(symbol)
}

// Bars returns the most recent n bars of the symbol, warm-up prefix
// included, oldest first.
func (c *engineContext) Bars(symbol string, n int) []types.Bar {
	history := c.engine.history[symbol]
	if n <= 0 || n >= len(history) {
		return history
	}

	return history[len(history)-n:]
}

// Mark records a chart annotation. The replay clock fills a missing
// timestamp.
func (c *engineContext) Mark(mark types.Mark) error {
	if mark.Time.IsZero() {
		mark.Time = c.engine.clock
	}

	return c.engine.marks.add(mark)
}

func (c *engineContext) Time() time.Time {
	return c.engine.clock
}

func (c *engineContext) Logger() *logger.Logger {
	return c.engine.log
}
