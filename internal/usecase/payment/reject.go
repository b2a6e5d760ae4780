package payment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/payment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
	"github.com/BruksfildServices01/barber-settlement/internal/timezone"
)

type RejectResult struct {
	Appointment      *models.Appointment `json:"appointment"`
	Client           *models.Client      `json:"client"`
	FraudIndicative  bool                `json:"fraud_indicative"`
	NewlyBlacklisted bool                `json:"newly_blacklisted"`
}

// RejectPayment cancels a prepaid booking whose voucher did not check out
// and updates the client's security posture in the same store transaction.
type RejectPayment struct {
	repo             domain.Repository
	audit            *audit.Dispatcher
	clock            timezone.Clock
	defaultThreshold int
}

func NewRejectPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	defaultThreshold int,
) *RejectPayment {
	return &RejectPayment{
		repo:             repo,
		audit:            audit,
		clock:            clock,
		defaultThreshold: defaultThreshold,
	}
}

func (uc *RejectPayment) threshold(shop *models.Barbershop) int {
	if shop.FalseVoucherThreshold != nil {
		return *shop.FalseVoucherThreshold
	}
	return uc.defaultThreshold
}

func (uc *RejectPayment) Execute(
	ctx context.Context,
	appointmentID uint,
	reason string,
	verifier role.Actor,
) (*RejectResult, error) {

	// --------------------------------------------------
	// 1️⃣ Motivo obrigatório
	// --------------------------------------------------
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, httperr.ErrBusiness(httperr.CodeReasonRequired)
	}

	fraud := payment.IsFraudIndicative(reason)

	var (
		next        *models.Appointment
		client      *models.Client
		blacklisted bool
	)

	// --------------------------------------------------
	// 2️⃣ Agendamento e cliente travados na mesma transação
	// --------------------------------------------------
	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := domain.LockVisible(ctx, tx, appointmentID, verifier)
		if err != nil {
			return err
		}

		if err := domain.RequireStatus(ap, domain.StatusPendingPayment); err != nil {
			return err
		}

		shop, err := tx.GetBarbershopByID(ctx, ap.BarbershopID)
		if err != nil {
			return err
		}
		now := uc.clock.In(shop.Timezone)

		// Cancelamento (máquina de estados)
		next = ap.Clone()
		if err := domain.Transition(next, domain.Change{
			To:     domain.StatusCancelled,
			Actor:  verifier,
			At:     now,
			Reason: reason,
		}); err != nil {
			return err
		}

		// Heurística de fraude + política de bloqueio
		client, err = tx.LockClient(ctx, ap.ClientID)
		if err != nil {
			return err
		}
		blacklisted = payment.ApplyRejection(&client.Security, fraud, uc.threshold(shop), now)

		if err := tx.UpdateAppointment(ctx, next); err != nil {
			return err
		}
		return tx.UpdateClientSecurityFlags(ctx, client)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(verifier, "payment_rejected", "appointment", next.ID, map[string]any{
		"reason":            reason,
		"fraud_indicative":  fraud,
		"newly_blacklisted": blacklisted,
	}))

	if blacklisted {
		uc.audit.Dispatch(audit.ActorEvent(verifier, "client_blacklisted", "client", client.ID, map[string]int{
			"false_vouchers_count": client.Security.FalseVouchersCount,
		}))
	}

	return &RejectResult{
		Appointment:      next,
		Client:           client,
		FraudIndicative:  fraud,
		NewlyBlacklisted: blacklisted,
	}, nil
}
