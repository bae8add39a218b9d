package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Side is the direction of the position an order targets. Whether the
// order executes as a buy or a sell at the venue is derived from the
// side and offset pair, see Order.IsBuy.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Offset states whether an order opens new exposure or closes held
// exposure on its side.
type Offset string

const (
	OffsetOpen  Offset = "OPEN"
	OffsetClose Offset = "CLOSE"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
	// OrderTypeStop is a stop-market order: it rests until the trigger
	// price is crossed, then fills like a market order.
	OrderTypeStop OrderType = "STOP"
)

type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	// OrderStatusPartiallyFilled exists for interface completeness; the
	// bar and tick matchers always fill eligible orders in full.
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
)

const (
	OrderReasonStrategy             string = "strategy"
	OrderReasonUserCancel           string = "user_cancel"
	OrderReasonReplayEnd            string = "replay_end"
	OrderReasonTradingDisabled      string = "trading_disabled"
	OrderReasonInvalidVolume        string = "invalid_volume"
	OrderReasonInvalidPrice         string = "invalid_price"
	OrderReasonInvalidRequest       string = "invalid_request"
	OrderReasonUnknownSymbol        string = "unknown_symbol"
	OrderReasonUnsupportedSide      string = "unsupported_side"
	OrderReasonInsufficientPosition string = "insufficient_position"
)

// OrderRequest is what a strategy submits. The engine assigns the id,
// status and timestamps when it accepts the request into the book.
type OrderRequest struct {
	Symbol string    `yaml:"symbol" json:"symbol" validate:"required"`
	Side   Side      `yaml:"side" json:"side" validate:"required,oneof=LONG SHORT"`
	Offset Offset    `yaml:"offset" json:"offset" validate:"required,oneof=OPEN CLOSE"`
	Type   OrderType `yaml:"type" json:"type" validate:"required,oneof=LIMIT MARKET STOP"`
	// Price is the limit price for LIMIT orders and the trigger price
	// for STOP orders. Ignored for MARKET orders.
	Price  float64 `yaml:"price" json:"price" validate:"gte=0"`
	Volume float64 `yaml:"volume" json:"volume" validate:"required,gt=0"`
}

// Validate checks the request shape. MARKET orders may omit the price;
// LIMIT and STOP orders must carry a positive one.
func (r *OrderRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order request", err)
	}

	if r.Type != OrderTypeMarket && r.Price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidOrder, "%s order for %s requires a positive price", r.Type, r.Symbol)
	}

	return nil
}

// Order is a request accepted into the book. The book owns the record
// until it reaches a terminal status.
type Order struct {
	ID       int64     `yaml:"id" json:"id" csv:"id"`
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Exchange string    `yaml:"exchange" json:"exchange" csv:"exchange"`
	Side     Side      `yaml:"side" json:"side" csv:"side"`
	Offset   Offset    `yaml:"offset" json:"offset" csv:"offset"`
	Type     OrderType `yaml:"type" json:"type" csv:"type"`
	// Price is the limit price for LIMIT orders and the trigger price
	// for STOP orders. Zero for MARKET orders.
	Price        float64     `yaml:"price" json:"price" csv:"price"`
	Volume       float64     `yaml:"volume" json:"volume" csv:"volume"`
	FilledVolume float64     `yaml:"filled_volume" json:"filled_volume" csv:"filled_volume"`
	Status       OrderStatus `yaml:"status" json:"status" csv:"status"`
	// Reason records why a terminal status was reached, one of the
	// OrderReason constants.
	Reason string `yaml:"reason" json:"reason" csv:"reason"`
	// CreatedAt is the replay clock at submission. An order only ever
	// matches data points strictly after this time.
	CreatedAt time.Time `yaml:"created_at" json:"created_at" csv:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at" csv:"updated_at"`
}

// IsBuy reports whether the order executes as a buy at the venue.
// Opening a long and closing a short both buy; the other two pairs
// sell.
func (o *Order) IsBuy() bool {
	return isBuy(o.Side, o.Offset)
}

// IsActive reports whether the order can still fill or be cancelled.
func (o *Order) IsActive() bool {
	return o.Status == OrderStatusSubmitted || o.Status == OrderStatusPartiallyFilled
}

func isBuy(side Side, offset Offset) bool {
	return (side == SideLong && offset == OffsetOpen) || (side == SideShort && offset == OffsetClose)
}
