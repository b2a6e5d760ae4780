package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// ListByStatus backs the work queues of the dashboard (payments to verify,
// bookings to review). Barbers only get their own appointments.
type ListByStatus struct {
	repo domain.Repository
}

func NewListByStatus(repo domain.Repository) *ListByStatus {
	return &ListByStatus{repo: repo}
}

func (uc *ListByStatus) Execute(
	ctx context.Context,
	actor role.Actor,
	barbershopID uint,
	status domain.Status,
) ([]models.Appointment, error) {

	if err := actor.Require(role.Staff); err != nil {
		return nil, err
	}

	if actor.Role != role.SuperAdmin {
		barbershopID = actor.BarbershopID
	}

	apps, err := uc.repo.ListAppointmentsByStatus(ctx, barbershopID, status)
	if err != nil {
		return nil, err
	}

	out := make([]models.Appointment, 0, len(apps))
	for i := range apps {
		if domain.Visible(&apps[i], actor) {
			out = append(out, apps[i])
		}
	}
	return out, nil
}
