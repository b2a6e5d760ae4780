package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// Visible reports whether actor may see ap at all. Super admins see every
// branch, barbers only their own chairs.
func Visible(ap *models.Appointment, actor role.Actor) bool {
	switch actor.Role {
	case role.SuperAdmin:
		return true
	case role.Barber:
		return ap.BarbershopID == actor.BarbershopID && ap.BarberID == actor.ID
	default:
		return ap.BarbershopID == actor.BarbershopID
	}
}

// ClientVisible scopes client records to the actor's branch.
func ClientVisible(c *models.Client, actor role.Actor) bool {
	return actor.Role == role.SuperAdmin || c.BarbershopID == actor.BarbershopID
}

// FindVisible loads an appointment the actor is allowed to see. Other
// branches' appointments are reported as not found.
func FindVisible(ctx context.Context, repo Repository, id uint, actor role.Actor) (*models.Appointment, error) {
	ap, err := repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(ap, actor) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap, nil
}

// LockVisible is FindVisible through LockAppointment; call it on the
// repository handed to WithinTx.
func LockVisible(ctx context.Context, tx Repository, id uint, actor role.Actor) (*models.Appointment, error) {
	ap, err := tx.LockAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(ap, actor) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap, nil
}

// LockVisibleClient is LockVisible for clients.
func LockVisibleClient(ctx context.Context, tx Repository, id uint, actor role.Actor) (*models.Client, error) {
	c, err := tx.LockClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ClientVisible(c, actor) {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	return c, nil
}

// FindVisibleClient is FindVisible for clients.
func FindVisibleClient(ctx context.Context, repo Repository, id uint, actor role.Actor) (*models.Client, error) {
	c, err := repo.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ClientVisible(c, actor) {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	return c, nil
}

// RequireStatus pins the source states an operation accepts.
func RequireStatus(ap *models.Appointment, allowed ...Status) error {
	if !contains(allowed, Status(ap.Status)) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}
