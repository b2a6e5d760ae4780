package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// ApproveAppointment confirms a booking waiting for administrative review.
// Prepaid bookings go through the payment verification flow instead.
type ApproveAppointment struct {
	transitioner
}

func NewApproveAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *ApproveAppointment {
	return &ApproveAppointment{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *ApproveAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	notes string,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from:   []domain.Status{domain.StatusPending, domain.StatusUnderReview},
		change: domain.Change{To: domain.StatusConfirmed, Notes: notes},
		action: "appointment_approved",
	})
}
