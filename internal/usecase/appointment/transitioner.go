package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// ======================================================
// SHARED TRANSITION FLOW
// ======================================================

// transitioner runs one guarded status change inside a single store
// transaction: lock → visibility → pinned source → Transition → store.
// The audit event is sent after commit.
type transitioner struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

type step struct {
	from   []domain.Status
	change domain.Change
	action string

	// within runs inside the same store transaction as the appointment
	// update, after it.
	within func(tx domain.Repository, ap *models.Appointment) error
}

func (t transitioner) run(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	s step,
) (*models.Appointment, error) {

	var from string
	var next *models.Appointment

	err := t.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := domain.LockVisible(ctx, tx, appointmentID, actor)
		if err != nil {
			return err
		}

		if err := domain.RequireStatus(ap, s.from...); err != nil {
			return err
		}

		shop, err := tx.GetBarbershopByID(ctx, ap.BarbershopID)
		if err != nil {
			return err
		}

		ch := s.change
		ch.Actor = actor
		ch.At = t.clock.In(shop.Timezone)

		from = ap.Status
		next = ap.Clone()
		if err := domain.Transition(next, ch); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, next); err != nil {
			return err
		}
		if s.within != nil {
			return s.within(tx, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.audit.Dispatch(audit.ActorEvent(actor, s.action, "appointment", next.ID, map[string]string{
		"from": from,
		"to":   next.Status,
	}))

	return next, nil
}
