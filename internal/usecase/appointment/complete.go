package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type CompleteInput struct {
	Notes          string
	BeforePhotoURL string
	AfterPhotoURL  string
}

type CompleteAppointment struct {
	transitioner
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *CompleteAppointment {
	return &CompleteAppointment{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	in CompleteInput,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from: []domain.Status{domain.StatusInProgress},
		change: domain.Change{
			To:             domain.StatusCompleted,
			Notes:          in.Notes,
			BeforePhotoURL: in.BeforePhotoURL,
			AfterPhotoURL:  in.AfterPhotoURL,
		},
		action: "appointment_completed",
	})
}
