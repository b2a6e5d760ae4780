package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayPayment is what an online payment provider reports about a charge.
type GatewayPayment struct {
	Provider     string          `json:"provider"`
	Reference    string          `json:"reference"`
	Status       string          `json:"status"`
	StatusDetail string          `json:"status_detail"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// Approved reports whether the provider considers the charge settled.
func (g GatewayPayment) Approved() bool {
	return g.Status == "approved"
}

// Gateway looks up online payments referenced by a voucher number.
type Gateway interface {
	Lookup(ctx context.Context, reference string) (*GatewayPayment, error)
}
