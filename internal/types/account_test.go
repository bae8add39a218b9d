package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountReturn(t *testing.T) {
	account := Account{InitialCapital: 100000, Equity: 110000}
	assert.InDelta(t, 0.1, account.Return(), 1e-9)

	account.Equity = 90000
	assert.InDelta(t, -0.1, account.Return(), 1e-9)

	account.Equity = 100000
	assert.Equal(t, 0.0, account.Return())
}

func TestAccountReturnZeroCapital(t *testing.T) {
	account := Account{InitialCapital: 0, Equity: 500}
	assert.Equal(t, 0.0, account.Return())
}
