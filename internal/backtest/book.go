package backtest

import (
	"sort"
	"time"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// orderBook owns every order of a run, pending and terminal alike.
// Pending orders keep submission order so matching iterates them
// deterministically. Ids are sequential per run.
type orderBook struct {
	orders  map[int64]*types.Order
	pending []int64
	seq     int64
}

func newOrderBook() *orderBook {
	return &orderBook{
		orders: make(map[int64]*types.Order),
	}
}

// add accepts a validated order into the book as SUBMITTED and
// assigns the next id.
func (b *orderBook) add(order types.Order) *types.Order {
	b.seq++
	order.ID = b.seq
	order.Status = types.OrderStatusSubmitted
	order.UpdatedAt = order.CreatedAt

	stored := order
	b.orders[order.ID] = &stored
	b.pending = append(b.pending, order.ID)

	return &stored
}

// recordRejected stores a rejected order for the run log without ever
// admitting it to the pending queue.
func (b *orderBook) recordRejected(order types.Order, reason string) *types.Order {
	b.seq++
	order.ID = b.seq
	order.Status = types.OrderStatusRejected
	order.Reason = reason
	order.UpdatedAt = order.CreatedAt

	stored := order
	b.orders[order.ID] = &stored

	return &stored
}

// get returns the live record for an id, or nil.
func (b *orderBook) get(id int64) *types.Order {
	return b.orders[id]
}

// pendingIDs returns a snapshot of the active queue in submission
// order. Callers mutate the book while iterating, so the live slice
// is never handed out.
func (b *orderBook) pendingIDs() []int64 {
	snapshot := make([]int64, len(b.pending))
	copy(snapshot, b.pending)

	return snapshot
}

// markFilled transitions an active order to FILLED.
func (b *orderBook) markFilled(id int64, volume float64, at time.Time) {
	order := b.orders[id]
	if order == nil {
		return
	}

	order.Status = types.OrderStatusFilled
	order.FilledVolume = volume
	order.UpdatedAt = at
	b.removePending(id)
}

// cancel transitions a pending order to CANCELLED with the given
// reason. Filled orders report ErrCodeOrderAlreadyFilled; unknown and
// already-terminal orders report ErrCodeOrderNotFound.
func (b *orderBook) cancel(id int64, reason string, at time.Time) (*types.Order, error) {
	order := b.orders[id]
	if order == nil {
		return nil, errors.Newf(errors.ErrCodeOrderNotFound, "order %d not found", id)
	}

	if order.Status == types.OrderStatusFilled {
		return nil, errors.Newf(errors.ErrCodeOrderAlreadyFilled, "order %d already filled", id)
	}

	if !order.IsActive() {
		return nil, errors.Newf(errors.ErrCodeOrderNotFound, "order %d is not pending", id)
	}

	order.Status = types.OrderStatusCancelled
	order.Reason = reason
	order.UpdatedAt = at
	b.removePending(id)

	return order, nil
}

func (b *orderBook) removePending(id int64) {
	for i, pending := range b.pending {
		if pending == id {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)

			return
		}
	}
}

// all returns copies of every order sorted by id.
func (b *orderBook) all() []types.Order {
	orders := make([]types.Order, 0, len(b.orders))
	for _, order := range b.orders {
		orders = append(orders, *order)
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })

	return orders
}
