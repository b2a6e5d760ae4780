package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// SendToReview escala um agendamento pendente para revisão administrativa.
type SendToReview struct {
	transitioner
}

func NewSendToReview(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *SendToReview {
	return &SendToReview{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *SendToReview) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	reason string,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from:   []domain.Status{domain.StatusPending},
		change: domain.Change{To: domain.StatusUnderReview, Reason: reason},
		action: "appointment_sent_to_review",
	})
}
