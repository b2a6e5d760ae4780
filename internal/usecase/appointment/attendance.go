package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// MarkAttendance starts the service and books its revenue. The status
// change and the transaction commit together.
type MarkAttendance struct {
	transitioner
}

func NewMarkAttendance(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *MarkAttendance {
	return &MarkAttendance{transitioner{repo: repo, audit: audit, clock: clock}}
}

func (uc *MarkAttendance) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
) (*models.Appointment, error) {
	return uc.run(ctx, appointmentID, actor, step{
		from:   []domain.Status{domain.StatusConfirmed},
		change: domain.Change{To: domain.StatusInProgress},
		action: "appointment_attendance",
		within: func(tx domain.Repository, ap *models.Appointment) error {
			return tx.RecordTransaction(ctx, &models.Transaction{
				Reference:     uuid.New(),
				BarbershopID:  ap.BarbershopID,
				AppointmentID: ap.ID,
				ClientID:      ap.ClientID,
				BarberID:      ap.BarberID,
				Kind:          models.TransactionKindService,
				Amount:        ap.TotalPrice,
				PaymentMethod: ap.PaymentMethod,
				RecordedBy:    actor.Identity(),
			})
		},
	})
}
