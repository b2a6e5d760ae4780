package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	BarbershopID uint
	BarberID     uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	// ProductIDs in booking order; repeats are allowed.
	ProductIDs []uint

	Date          string
	Time          string
	PaymentMethod string
	Notes         string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	actor role.Actor,
	in CreateBookingInput,
) (*models.Appointment, error) {

	if err := actor.Require(role.Staff); err != nil {
		return nil, err
	}

	if actor.Role != role.SuperAdmin && in.BarbershopID != actor.BarbershopID {
		return nil, httperr.ErrBusiness("barbershop_not_found")
	}

	if actor.Role == role.Barber && in.BarberID != actor.ID {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}

	if in.BarberID == 0 {
		return nil, httperr.ErrBusiness("barber_required")
	}

	if len(in.ProductIDs) == 0 {
		return nil, httperr.ErrBusiness("services_required")
	}

	if strings.TrimSpace(in.ClientPhone) == "" {
		return nil, httperr.ErrBusiness("client_phone_required")
	}

	// --------------------------------------------------
	// 1️⃣ Barbearia
	// --------------------------------------------------
	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no timezone da barbearia
	// --------------------------------------------------
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima
	// --------------------------------------------------
	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := uc.clock.In(shop.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ Serviços (ordem preservada)
	// --------------------------------------------------
	products, err := uc.repo.GetProducts(ctx, in.BarbershopID, in.ProductIDs)
	if err != nil {
		return nil, err
	}

	services := make([]models.AppointmentService, 0, len(products))
	total := decimal.Zero
	duration := 0
	for i, p := range products {
		services = append(services, models.AppointmentService{
			Position:        i,
			BarberProductID: p.ID,
			Name:            p.Name,
			Price:           p.Price,
			DurationMin:     p.DurationMin,
		})
		total = total.Add(p.Price)
		duration += p.DurationMin
	}

	if total.IsNegative() {
		return nil, httperr.ErrBusiness("invalid_price")
	}

	end := start.Add(time.Duration(duration) * time.Minute)

	// --------------------------------------------------
	// 5️⃣ Cliente + conflito + criação na mesma transação
	// --------------------------------------------------
	ap := &models.Appointment{
		BarbershopID:  in.BarbershopID,
		BarberID:      in.BarberID,
		Services:      services,
		TotalPrice:    total,
		StartTime:     start,
		EndTime:       end,
		DurationMin:   duration,
		Status:        string(domain.InitialStatus(shop.PaymentRequired)),
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		client, err := tx.GetOrCreateClient(
			ctx,
			in.BarbershopID,
			in.ClientName,
			in.ClientPhone,
			in.ClientEmail,
		)
		if err != nil {
			return err
		}

		// cliente bloqueado não agenda
		if client.Security.Blacklisted {
			return httperr.ErrBusiness("client_blacklisted")
		}
		ap.ClientID = client.ID

		if err := tx.AssertNoTimeConflict(ctx, in.BarberID, start, end); err != nil {
			return err
		}

		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6️⃣ Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.ActorEvent(actor, "appointment_created", "appointment", ap.ID, map[string]any{
		"status":      ap.Status,
		"total_price": ap.TotalPrice.StringFixed(2),
	}))

	return ap, nil
}
