package appointment

import (
	"context"
	"fmt"
	"io"

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

type PhotoKind string

const (
	PhotoBefore PhotoKind = "before"
	PhotoAfter  PhotoKind = "after"
)

func ParsePhotoKind(s string) (PhotoKind, error) {
	switch k := PhotoKind(s); k {
	case PhotoBefore, PhotoAfter:
		return k, nil
	}
	return "", httperr.ErrBusiness("invalid_photo_kind")
}

// AttachPhoto stores a before/after picture of a service in progress or
// just finished. It never changes the status.
type AttachPhoto struct {
	repo   domain.Repository
	images ImageStore
	audit  *audit.Dispatcher
}

func NewAttachPhoto(
	repo domain.Repository,
	images ImageStore,
	audit *audit.Dispatcher,
) *AttachPhoto {
	return &AttachPhoto{
		repo:   repo,
		images: images,
		audit:  audit,
	}
}

var photoRoles = role.NewSet(role.Barber, role.Reception, role.SuperAdmin, role.BranchAdmin)

func (uc *AttachPhoto) Execute(
	ctx context.Context,
	appointmentID uint,
	actor role.Actor,
	kind PhotoKind,
	img io.Reader,
) (*models.Appointment, error) {

	if err := actor.Require(photoRoles); err != nil {
		return nil, err
	}

	if uc.images == nil {
		return nil, httperr.ErrBusiness("storage_unavailable")
	}

	ap, err := domain.FindVisible(ctx, uc.repo, appointmentID, actor)
	if err != nil {
		return nil, err
	}

	if err := domain.RequireStatus(ap, domain.StatusInProgress, domain.StatusCompleted); err != nil {
		return nil, err
	}

	url, err := uc.images.SaveImage(ctx, fmt.Sprintf("appointments/%d/%s", ap.ID, kind), img)
	if err != nil {
		return nil, err
	}

	var next *models.Appointment
	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		cur, err := domain.LockVisible(ctx, tx, appointmentID, actor)
		if err != nil {
			return err
		}
		if err := domain.RequireStatus(cur, domain.StatusInProgress, domain.StatusCompleted); err != nil {
			return err
		}

		next = cur.Clone()
		if kind == PhotoBefore {
			next.BeforePhotoURL = url
		} else {
			next.AfterPhotoURL = url
		}
		return tx.UpdateAppointment(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.ActorEvent(actor, "appointment_photo", "appointment", next.ID, map[string]string{
		"kind": string(kind),
	}))

	return next, nil
}
