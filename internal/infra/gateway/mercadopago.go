// Package gateway adapts online payment providers to payment.Gateway.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

// paymentGetter is the part of the MercadoPago payment client used here.
type paymentGetter interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

type MercadoPago struct {
	client paymentGetter
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPago{client: mppayment.NewClient(cfg)}, nil
}

// Lookup reads a payment by its MercadoPago id, which clients paste as the
// voucher number.
func (m *MercadoPago) Lookup(ctx context.Context, reference string) (*payment.GatewayPayment, error) {
	id, err := strconv.Atoi(strings.TrimSpace(reference))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_gateway_reference")
	}

	res, err := m.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return toGatewayPayment(res), nil
}

func toGatewayPayment(res *mppayment.Response) *payment.GatewayPayment {
	return &payment.GatewayPayment{
		Provider:     "mercadopago",
		Reference:    strconv.Itoa(res.ID),
		Status:       res.Status,
		StatusDetail: res.StatusDetail,
		Amount:       decimal.NewFromFloat(res.TransactionAmount).Round(2),
		Currency:     res.CurrencyID,
	}
}

var _ payment.Gateway = (*MercadoPago)(nil)
