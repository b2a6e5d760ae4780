package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type RejectAppointment struct {
	transitioner
}

func NewRejectAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *RejectAppointment {
	return &RejectAppointment{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *RejectAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	reason string,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from:   []domain.Status{domain.StatusPending, domain.StatusUnderReview},
		change: domain.Change{To: domain.StatusRejected, Reason: reason},
		action: "appointment_rejected",
	})
}
