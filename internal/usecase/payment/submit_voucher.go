package payment

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/BruksfildServices01/barber-settlement/internal/audit"
	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// ImageStore keeps uploaded images and returns their public URL.
type ImageStore interface {
	SaveImage(ctx context.Context, prefix string, r io.Reader) (string, error)
}

type VoucherInput struct {
	Number        string
	URL           string
	PaymentMethod string

	// Image is optional; when set it is stored and replaces URL.
	Image io.Reader
}

// SubmitVoucher attaches the payment proof to a prepaid booking so it can
// be verified. The status does not change.
type SubmitVoucher struct {
	repo   domain.Repository
	images ImageStore
	audit  *audit.Dispatcher
}

func NewSubmitVoucher(
	repo domain.Repository,
	images ImageStore,
	audit *audit.Dispatcher,
) *SubmitVoucher {
	return &SubmitVoucher{
		repo:   repo,
		images: images,
		audit:  audit,
	}
}

var voucherRoles = role.NewSet(role.Reception, role.SuperAdmin, role.BranchAdmin)

func (uc *SubmitVoucher) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	in VoucherInput,
) (*models.Appointment, error) {

	if err := actor.Require(voucherRoles); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, httperr.ErrBusiness("voucher_number_required")
	}

	ap, err := domain.FindVisible(ctx, uc.repo, appointmentID, actor)
	if err != nil {
		return nil, err
	}

	if err := domain.RequireStatus(ap, domain.StatusPendingPayment); err != nil {
		return nil, err
	}

	url := in.URL
	if in.Image != nil {
		if uc.images == nil {
			return nil, httperr.ErrBusiness("storage_unavailable")
		}
		url, err = uc.images.SaveImage(ctx, fmt.Sprintf("vouchers/%d", ap.ID), in.Image)
		if err != nil {
			return nil, err
		}
	}

	// Upload fora da transação; o status é conferido de novo com a linha travada
	var next *models.Appointment
	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		cur, err := domain.LockVisible(ctx, tx, appointmentID, actor)
		if err != nil {
			return err
		}
		if err := domain.RequireStatus(cur, domain.StatusPendingPayment); err != nil {
			return err
		}

		next = cur.Clone()
		next.VoucherNumber = number
		next.VoucherURL = url
		if in.PaymentMethod != "" {
			next.PaymentMethod = in.PaymentMethod
		}
		return tx.UpdateAppointment(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "voucher_submitted", "appointment", next.ID, map[string]string{
		"voucher_number": number,
	}))

	return next, nil
}
