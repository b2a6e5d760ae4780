package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// GrantQuery filters the loyalty ledger of one client.
type GrantQuery struct {
	ClientID   uint
	Kind       string
	Since      *time.Time
	ReferredID *uint
}

// Repository is the external store the engine calls into. Every method
// either applies completely or fails; not-found is reported as a business
// error ("<entity>_not_found") and anything else as *httperr.StoreError.
type Repository interface {
	// -------- Barbershop / catalogue --------
	GetBarbershopByID(
		ctx context.Context,
		id uint,
	) (*models.Barbershop, error)

	GetProducts(
		ctx context.Context,
		barbershopID uint,
		productIDs []uint,
	) ([]models.BarberProduct, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		barbershopID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	GetClient(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	// LockClient reads the client and holds its row until the enclosing
	// transaction ends. Read-modify-write of counters goes through it.
	LockClient(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	UpdateClientSecurityFlags(
		ctx context.Context,
		client *models.Client,
	) error

	UpdateClientLoyalty(
		ctx context.Context,
		client *models.Client,
	) error

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	AssertNoTimeConflict(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// LockAppointment is GetAppointment holding the row until the enclosing
	// transaction ends. Status checks that guard a write read through it.
	LockAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsByStatus(
		ctx context.Context,
		barbershopID uint,
		status Status,
	) ([]models.Appointment, error)

	// -------- Settlement --------
	RecordTransaction(
		ctx context.Context,
		tx *models.Transaction,
	) error

	ListStaffEarnings(
		ctx context.Context,
		barbershopID *uint,
		from time.Time,
		to time.Time,
	) ([]commission.StaffEarnings, error)

	// -------- Loyalty --------
	CreateLoyaltyGrant(
		ctx context.Context,
		grant *models.LoyaltyGrant,
	) error

	HasLoyaltyGrant(
		ctx context.Context,
		q GrantQuery,
	) (bool, error)

	ListLoyaltyGrants(
		ctx context.Context,
		clientID uint,
	) ([]models.LoyaltyGrant, error)

	// WithinTx runs fn against a repository bound to a single store
	// transaction; an error from fn rolls every write back.
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}
