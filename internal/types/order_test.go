package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name        string
		request     OrderRequest
		shouldError bool
	}{
		{
			name: "valid limit open",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 10.0,
			},
			shouldError: false,
		},
		{
			name: "valid short close",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideShort,
				Offset: OffsetClose,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 1.0,
			},
			shouldError: false,
		},
		{
			name: "valid market order without price",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeMarket,
				Price:  0,
				Volume: 10.0,
			},
			shouldError: false,
		},
		{
			name: "valid stop order",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeStop,
				Price:  105.0,
				Volume: 10.0,
			},
			shouldError: false,
		},
		{
			name: "empty symbol",
			request: OrderRequest{
				Symbol: "",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 10.0,
			},
			shouldError: true,
		},
		{
			name: "invalid side",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   "BUY",
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 10.0,
			},
			shouldError: true,
		},
		{
			name: "invalid offset",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: "EXIT",
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 10.0,
			},
			shouldError: true,
		},
		{
			name: "invalid type",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   "TRAILING",
				Price:  100.0,
				Volume: 10.0,
			},
			shouldError: true,
		},
		{
			name: "zero volume",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: 0,
			},
			shouldError: true,
		},
		{
			name: "negative volume",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  100.0,
				Volume: -5.0,
			},
			shouldError: true,
		},
		{
			name: "limit order without price",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeLimit,
				Price:  0,
				Volume: 10.0,
			},
			shouldError: true,
		},
		{
			name: "stop order without price",
			request: OrderRequest{
				Symbol: "AAPL",
				Side:   SideLong,
				Offset: OffsetOpen,
				Type:   OrderTypeStop,
				Price:  0,
				Volume: 10.0,
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderIsBuy(t *testing.T) {
	tests := []struct {
		name   string
		side   Side
		offset Offset
		isBuy  bool
	}{
		{name: "open long buys", side: SideLong, offset: OffsetOpen, isBuy: true},
		{name: "close short buys", side: SideShort, offset: OffsetClose, isBuy: true},
		{name: "close long sells", side: SideLong, offset: OffsetClose, isBuy: false},
		{name: "open short sells", side: SideShort, offset: OffsetOpen, isBuy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order{Side: tt.side, Offset: tt.offset}
			assert.Equal(t, tt.isBuy, order.IsBuy())
		})
	}
}

func TestOrderIsActive(t *testing.T) {
	order := Order{
		ID:        1,
		Symbol:    "AAPL",
		Side:      SideLong,
		Offset:    OffsetOpen,
		Type:      OrderTypeLimit,
		Price:     100.0,
		Volume:    10.0,
		Status:    OrderStatusSubmitted,
		CreatedAt: time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC),
	}
	assert.True(t, order.IsActive())

	order.Status = OrderStatusPartiallyFilled
	assert.True(t, order.IsActive())

	for _, status := range []OrderStatus{OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected} {
		order.Status = status
		assert.False(t, order.IsActive(), "status %s should be terminal", status)
	}
}
