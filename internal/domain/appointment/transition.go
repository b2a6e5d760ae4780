package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// Change is a requested status transition.
type Change struct {
	To    Status
	Actor role.Actor
	At    time.Time

	Reason string
	Notes  string

	BeforePhotoURL string
	AfterPhotoURL  string
}

// Transition is the only place where an appointment status changes. Every
// check runs before the first field is written, so a failed call leaves ap
// exactly as it was.
func Transition(ap *models.Appointment, ch Change) error {
	from := Status(ap.Status)

	if err := CanTransition(from, ch.To, ch.Actor.Role); err != nil {
		return err
	}

	reason := strings.TrimSpace(ch.Reason)
	if from == StatusPendingPayment && ch.To == StatusCancelled && reason == "" {
		return httperr.ErrBusiness(httperr.CodeReasonRequired)
	}

	at := ch.At
	who := ch.Actor.Identity()

	switch ch.To {
	case StatusConfirmed:
		if from == StatusPendingPayment {
			ap.PaymentVerified = true
			ap.PaymentVerifiedBy = who
			ap.PaymentVerifiedAt = &at
		} else {
			ap.ApprovedBy = who
			ap.ApprovedAt = &at
		}

	case StatusRejected:
		ap.RejectedBy = who
		ap.RejectedAt = &at
		ap.ReviewReason = reason

	case StatusInProgress:
		ap.AttendanceMarked = true
		ap.AttendanceTime = &at

	case StatusCompleted:
		ap.CompletedAt = &at
		if ch.BeforePhotoURL != "" {
			ap.BeforePhotoURL = ch.BeforePhotoURL
		}
		if ch.AfterPhotoURL != "" {
			ap.AfterPhotoURL = ch.AfterPhotoURL
		}

	case StatusCancelled:
		ap.CancelledAt = &at
		if from == StatusPendingPayment {
			ap.PaymentVerified = false
			ap.PaymentRejectedReason = reason
			ap.RejectedBy = who
			ap.RejectedAt = &at
		} else {
			// pending → cancelled só existe como falta do cliente
			ap.NoShow = true
			ap.ReviewReason = reason
		}

	case StatusUnderReview:
		ap.ReviewReason = reason
	}

	if ch.Notes != "" {
		ap.Notes = ch.Notes
	}

	ap.Status = string(ch.To)
	return nil
}
