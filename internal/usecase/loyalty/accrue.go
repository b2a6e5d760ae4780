package loyalty

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type AccrueResult struct {
	Points  int64           `json:"points"`
	Account loyalty.Account `json:"account"`
}

// Accrue credits the points of a completed appointment to its client.
// Each appointment is credited at most once.
type Accrue struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	clock   timezone.Clock
	program loyalty.Program
}

func NewAccrue(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	program loyalty.Program,
) *Accrue {
	return &Accrue{
		repo:    repo,
		audit:   audit,
		clock:   clock,
		program: program,
	}
}

func (uc *Accrue) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
) (*AccrueResult, error) {

	if err := actor.Require(role.Staff); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	var (
		next   *models.Appointment
		client *models.Client
		points int64
	)

	// Agendamento e cliente travados: o crédito acontece uma vez só
	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := domain.LockVisible(ctx, tx, appointmentID, actor)
		if err != nil {
			return err
		}

		if ap.Status != string(domain.StatusCompleted) {
			return httperr.ErrBusiness("appointment_not_completed")
		}
		if ap.LoyaltyAwarded {
			return httperr.ErrBusiness("loyalty_already_awarded")
		}

		client, err = tx.LockClient(ctx, ap.ClientID)
		if err != nil {
			return err
		}

		points = uc.program.Earned(ap.TotalPrice)

		client.Loyalty.Points += points
		client.Loyalty.TotalSpent = client.Loyalty.TotalSpent.Add(ap.TotalPrice)
		client.Loyalty.Tier = uc.program.TierName(client.Loyalty.TotalSpent)

		next = ap.Clone()
		next.LoyaltyAwarded = true

		if err := tx.UpdateAppointment(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateClientLoyalty(ctx, client); err != nil {
			return err
		}
		if points == 0 {
			return nil
		}
		apID := next.ID
		return tx.CreateLoyaltyGrant(ctx, &models.LoyaltyGrant{
			ClientID:      client.ID,
			Kind:          models.GrantEarned,
			Points:        points,
			AppointmentID: &apID,
			ExpiresAt:     uc.program.ExpiresAt(now),
			GrantedBy:     actor.Identity(),
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "loyalty_accrued", "client", client.ID, map[string]any{
		"appointment_id": next.ID,
		"points":         points,
	}))

	return &AccrueResult{
		Points:  points,
		Account: uc.program.Account(client.Loyalty.Points, client.Loyalty.TotalSpent),
	}, nil
}
