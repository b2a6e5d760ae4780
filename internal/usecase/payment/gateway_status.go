package payment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

const MethodMercadoPago = "mercadopago"

type GatewayReport struct {
	Payment       *payment.GatewayPayment `json:"payment"`
	AmountMatches bool                    `json:"amount_matches"`
}

// GatewayStatus fetches what the online provider knows about the voucher
// of a prepaid booking. It is advisory: the verifier still decides.
type GatewayStatus struct {
	repo    domain.Repository
	gateway payment.Gateway
}

func NewGatewayStatus(
	repo domain.Repository,
	gateway payment.Gateway,
) *GatewayStatus {
	return &GatewayStatus{
		repo:    repo,
		gateway: gateway,
	}
}

func (uc *GatewayStatus) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
) (*GatewayReport, error) {

	if err := actor.Require(role.Admins); err != nil {
		return nil, err
	}

	ap, err := domain.FindVisible(ctx, uc.repo, appointmentID, actor)
	if err != nil {
		return nil, err
	}

	if ap.PaymentMethod != MethodMercadoPago {
		return nil, httperr.ErrBusiness("gateway_not_applicable")
	}
	if ap.VoucherNumber == "" {
		return nil, httperr.ErrBusiness("voucher_number_required")
	}
	if uc.gateway == nil {
		return nil, httperr.ErrBusiness("gateway_unavailable")
	}

	gp, err := uc.gateway.Lookup(ctx, ap.VoucherNumber)
	if err != nil {
		return nil, err
	}

	return &GatewayReport{
		Payment:       gp,
		AmountMatches: gp.Amount.Equal(ap.TotalPrice),
	}, nil
}
