package payment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// ApprovePayment confirms a prepaid booking after the voucher was checked.
// There is no fraud check on this path.
type ApprovePayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewApprovePayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *ApprovePayment {
	return &ApprovePayment{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

func (uc *ApprovePayment) Execute(
	ctx context.Context,
	appointmentID uint,
	verifier role.Actor,
) (*models.Appointment, error) {

	var next *models.Appointment

	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := domain.LockVisible(ctx, tx, appointmentID, verifier)
		if err != nil {
			return err
		}

		if err := domain.RequireStatus(ap, domain.StatusPendingPayment); err != nil {
			return err
		}

		shop, err := tx.GetBarbershopByID(ctx, ap.BarbershopID)
		if err != nil {
			return err
		}

		next = ap.Clone()
		if err := domain.Transition(next, domain.Change{
			To:    domain.StatusConfirmed,
			Actor: verifier,
			At:    uc.clock.In(shop.Timezone),
		}); err != nil {
			return err
		}

		return tx.UpdateAppointment(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(verifier, "payment_approved", "appointment", next.ID, map[string]string{
		"voucher_number": next.VoucherNumber,
	}))

	return next, nil
}
