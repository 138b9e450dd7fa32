package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *Midtrans) CreateCheckout(ctx context.Context, charge Charge) (*Checkout, error) {
	if charge.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	amount := int64(math.Round(charge.Amount))
	if amount <= 0 {
		return nil, fmt.Errorf("invalid amount %.2f", charge.Amount)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  charge.OrderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: charge.CustomerName,
			Email: charge.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    charge.ItemID,
				Name:  truncate(charge.ItemName, 50),
				Price: amount,
				Qty:   1,
			},
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}

	resp, merr := m.snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("midtrans create transaction: %w", merr)
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (m *Midtrans) TransactionStatus(ctx context.Context, orderID string) (string, error) {
	resp, merr := m.core.CheckTransaction(orderID)
	if merr != nil {
		return "", fmt.Errorf("midtrans check transaction: %w", merr)
	}
	return resp.TransactionStatus, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
