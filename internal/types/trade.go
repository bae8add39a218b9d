package types

import "time"

// Trade is one fill. Trades are immutable once recorded; the engine
// appends them in execution order with sequential ids.
type Trade struct {
	ID       int64  `yaml:"id" json:"id" csv:"id"`
	OrderID  int64  `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol   string `yaml:"symbol" json:"symbol" csv:"symbol"`
	Exchange string `yaml:"exchange" json:"exchange" csv:"exchange"`
	Side     Side   `yaml:"side" json:"side" csv:"side"`
	Offset   Offset `yaml:"offset" json:"offset" csv:"offset"`
	// Price is the fill price with slippage already applied.
	Price      float64 `yaml:"price" json:"price" csv:"price"`
	Volume     float64 `yaml:"volume" json:"volume" csv:"volume"`
	Commission float64 `yaml:"commission" json:"commission" csv:"commission"`
	// PnL is the net realized contribution of this trade: gross close
	// profit minus this trade's commission. Opening trades carry only
	// the commission cost, so their PnL is negative. Summing PnL over
	// all trades of a run reproduces the ledger's realized PnL.
	PnL        float64   `yaml:"pnl" json:"pnl" csv:"pnl"`
	ExecutedAt time.Time `yaml:"executed_at" json:"executed_at" csv:"executed_at"`
}

// IsBuy reports whether the fill executed as a buy at the venue.
func (t *Trade) IsBuy() bool {
	return isBuy(t.Side, t.Offset)
}

// PositionDelta is the signed change this fill applies to the net
// position of its symbol: +Volume when opening a long or closing a
// short, -Volume when opening a short or closing a long.
func (t *Trade) PositionDelta() float64 {
	if t.IsBuy() {
		return t.Volume
	}

	return -t.Volume
}
