// Package payment talks to the payment provider. Only checkout creation and
// status lookup are needed; settlement details stay with the provider.
package payment

import (
	"context"
	"errors"

	"github.com/lshigami/vaikuntha/config"
	"github.com/rs/zerolog/log"
)

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("payment gateway is not configured")

type Charge struct {
	OrderID       string
	Amount        float64
	Currency      string
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
}

// Checkout is what the client needs to complete the payment with the provider.
type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type Gateway interface {
	CreateCheckout(ctx context.Context, charge Charge) (*Checkout, error)
	// TransactionStatus returns the provider's raw status, e.g. "settlement" or "expire".
	TransactionStatus(ctx context.Context, orderID string) (string, error)
}

// New returns the midtrans gateway, or a gateway that always fails with
// ErrNotConfigured when MIDTRANS_SERVER_KEY is empty.
func New(cfg *config.Config) Gateway {
	if cfg.Midtrans.ServerKey == "" {
		log.Warn().Msg("MIDTRANS_SERVER_KEY is not set. Paid checkouts will be unavailable.")
		return unconfigured{}
	}
	return NewMidtrans(cfg.Midtrans.ServerKey, cfg.Midtrans.Production)
}

type unconfigured struct{}

func (unconfigured) CreateCheckout(context.Context, Charge) (*Checkout, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) TransactionStatus(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
