package payment

import (
	"context"
	"testing"

	"github.com/lshigami/vaikuntha/config"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredGateway(t *testing.T) {
	g := New(&config.Config{})
	_, err := g.CreateCheckout(context.Background(), Charge{OrderID: "o", Amount: 10})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.TransactionStatus(context.Background(), "o")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMidtransRejectsBadCharge(t *testing.T) {
	m := NewMidtrans("SB-Mid-server-test", false)
	_, err := m.CreateCheckout(context.Background(), Charge{Amount: 10})
	assert.Error(t, err)
	_, err = m.CreateCheckout(context.Background(), Charge{OrderID: "o", Amount: 0.2})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}
