package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// notFound maps gorm's missing-row error onto the "<entity>_not_found"
// business code; every other failure becomes a StoreError.
func notFound(op, entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(entity + "_not_found")
	}
	return httperr.Store(op, err)
}

func activeStatuses() []string {
	out := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
	return httperr.Store("transaction", err)
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, notFound("get barbershop", "barbershop", err)
	}
	return &shop, nil
}

// --------------------------------------------------
// Product
// --------------------------------------------------

// GetProducts returns the active products in the order of productIDs.
// Repeated ids are allowed (two identical services in one booking).
func (r *AppointmentGormRepository) GetProducts(
	ctx context.Context,
	barbershopID uint,
	productIDs []uint,
) ([]models.BarberProduct, error) {

	var found []models.BarberProduct
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = ? AND id IN ?", barbershopID, true, productIDs).
		Find(&found).Error; err != nil {
		return nil, httperr.Store("get products", err)
	}

	byID := make(map[uint]models.BarberProduct, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]models.BarberProduct, 0, len(productIDs))
	for _, id := range productIDs {
		p, ok := byID[id]
		if !ok {
			return nil, httperr.ErrBusiness("product_not_found")
		}
		out = append(out, p)
	}
	return out, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	barbershopID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", barbershopID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.Store("find client", err)
	}

	client = models.Client{
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, httperr.Store("create client", err)
	}

	return &client, nil
}

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, notFound("get client", "client", err)
	}
	return &client, nil
}

func (r *AppointmentGormRepository) LockClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&client, id).Error; err != nil {
		return nil, notFound("lock client", "client", err)
	}
	return &client, nil
}

func (r *AppointmentGormRepository) UpdateClientSecurityFlags(
	ctx context.Context,
	client *models.Client,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{
			"security_false_vouchers_count":    client.Security.FalseVouchersCount,
			"security_rejected_payments_count": client.Security.RejectedPaymentsCount,
			"security_blacklisted":             client.Security.Blacklisted,
			"security_last_rejection_date":     client.Security.LastRejectionDate,
		})
	if res.Error != nil {
		return httperr.Store("update client security flags", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("client_not_found")
	}
	return nil
}

func (r *AppointmentGormRepository) UpdateClientLoyalty(
	ctx context.Context,
	client *models.Client,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{
			"loyalty_points":            client.Loyalty.Points,
			"loyalty_tier":              client.Loyalty.Tier,
			"loyalty_total_spent":       client.Loyalty.TotalSpent,
			"loyalty_last_warning_date": client.Loyalty.LastWarningDate,
		})
	if res.Error != nil {
		return httperr.Store("update client loyalty", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("client_not_found")
	}
	return nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Create(ap).Error; err != nil {
		if httperr.IsExclusionConflict(err) {
			return httperr.ErrBusiness("time_conflict")
		}
		return httperr.Store("create appointment", err)
	}
	return nil
}

func (r *AppointmentGormRepository) AssertNoTimeConflict(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) error {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			barberID,
			activeStatuses(),
			end,
			start,
		).
		Count(&count).Error; err != nil {
		return httperr.Store("check time conflict", err)
	}

	if count > 0 {
		return httperr.ErrBusiness("time_conflict")
	}

	return nil
}

func orderedServices(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Services", orderedServices).
		First(&ap, id).Error; err != nil {
		return nil, notFound("get appointment", "appointment", err)
	}

	return &ap, nil
}

// LockAppointment takes the row lock first and loads the services in a
// second query, so the lock never spreads to the preload.
func (r *AppointmentGormRepository) LockAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, notFound("lock appointment", "appointment", err)
	}

	if err := orderedServices(r.db.WithContext(ctx)).
		Where("appointment_id = ?", ap.ID).
		Find(&ap.Services).Error; err != nil {
		return nil, httperr.Store("load appointment services", err)
	}

	return &ap, nil
}

// UpdateAppointment writes the appointment row. Services are fixed at
// booking and are not rewritten.
func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", ap.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(ap)
	if res.Error != nil {
		return httperr.Store("update appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("appointment_not_found")
	}
	return nil
}

func (r *AppointmentGormRepository) ListAppointmentsByStatus(
	ctx context.Context,
	barbershopID uint,
	status domain.Status,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Services", orderedServices).
		Where("barbershop_id = ? AND status = ?", barbershopID, string(status)).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, httperr.Store("list appointments", err)
	}

	return apps, nil
}

// --------------------------------------------------
// Settlement
// --------------------------------------------------

func (r *AppointmentGormRepository) RecordTransaction(
	ctx context.Context,
	tx *models.Transaction,
) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return httperr.Store("record transaction", err)
	}
	return nil
}

type staffEarningsRow struct {
	BarberID      uint
	Name          string
	Active        bool
	TotalEarnings decimal.Decimal
	TotalServices int
}

// ListStaffEarnings sums completed appointments per barber over [from, to).
// Barbers without completed work in the window are listed with zero.
func (r *AppointmentGormRepository) ListStaffEarnings(
	ctx context.Context,
	barbershopID *uint,
	from time.Time,
	to time.Time,
) ([]commission.StaffEarnings, error) {

	q := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.id AS barber_id, u.name AS name, u.active AS active,
			COALESCE(SUM(a.total_price), 0) AS total_earnings,
			COUNT(a.id) AS total_services`).
		Joins(
			"LEFT JOIN appointments a ON a.barber_id = u.id AND a.status = ? AND a.completed_at >= ? AND a.completed_at < ?",
			string(domain.StatusCompleted), from, to,
		).
		Where("u.role = ?", string(role.Barber))

	if barbershopID != nil {
		q = q.Where("u.barbershop_id = ?", *barbershopID)
	}

	var rows []staffEarningsRow
	if err := q.Group("u.id, u.name, u.active").
		Order("u.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, httperr.Store("list staff earnings", err)
	}

	out := make([]commission.StaffEarnings, 0, len(rows))
	for _, row := range rows {
		out = append(out, commission.StaffEarnings{
			BarberID:      row.BarberID,
			Name:          row.Name,
			Active:        row.Active,
			TotalEarnings: row.TotalEarnings,
			TotalServices: row.TotalServices,
		})
	}
	return out, nil
}

// --------------------------------------------------
// Loyalty
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateLoyaltyGrant(
	ctx context.Context,
	grant *models.LoyaltyGrant,
) error {
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		return httperr.Store("create loyalty grant", err)
	}
	return nil
}

func (r *AppointmentGormRepository) HasLoyaltyGrant(
	ctx context.Context,
	q domain.GrantQuery,
) (bool, error) {

	db := r.db.WithContext(ctx).
		Model(&models.LoyaltyGrant{}).
		Where("client_id = ? AND kind = ?", q.ClientID, q.Kind)

	if q.Since != nil {
		db = db.Where("created_at >= ?", *q.Since)
	}
	if q.ReferredID != nil {
		db = db.Where("referred_id = ?", *q.ReferredID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, httperr.Store("check loyalty grant", err)
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) ListLoyaltyGrants(
	ctx context.Context,
	clientID uint,
) ([]models.LoyaltyGrant, error) {

	var grants []models.LoyaltyGrant
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&grants).Error; err != nil {
		return nil, httperr.Store("list loyalty grants", err)
	}
	return grants, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
