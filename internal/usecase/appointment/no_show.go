package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// MarkNoShow cancels a pending booking whose client never showed up. It
// only accepts Pending: a prepaid booking is cancelled through payment
// rejection, where the fraud check runs.
type MarkNoShow struct {
	transitioner
}

func NewMarkNoShow(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *MarkNoShow {
	return &MarkNoShow{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	reason string,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from:   []domain.Status{domain.StatusPending},
		change: domain.Change{To: domain.StatusCancelled, Reason: reason},
		action: "appointment_no_show",
	})
}
