package appointment

import (
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending        Status = "pending"
	StatusUnderReview    Status = "under_review"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusRejected       Status = "rejected"
)

var AllStatuses = []Status{
	StatusPending,
	StatusUnderReview,
	StatusPendingPayment,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}

// ActiveStatuses hold the barber's chair; they take part in conflict checks.
var ActiveStatuses = []Status{
	StatusPending,
	StatusUnderReview,
	StatusPendingPayment,
	StatusConfirmed,
	StatusInProgress,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Valid() {
		return st, nil
	}
	return "", httperr.ErrBusiness("invalid_status")
}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// InitialStatus é o status de criação de um agendamento
func InitialStatus(paymentRequired bool) Status {
	if paymentRequired {
		return StatusPendingPayment
	}
	return StatusPending
}

// ===============================
// Guard table
// ===============================

type edge struct {
	from  []Status
	to    []Status
	roles role.Set
}

var guardTable = []edge{
	// revisão administrativa
	{
		from:  []Status{StatusPending, StatusUnderReview},
		to:    []Status{StatusConfirmed, StatusRejected},
		roles: role.NewSet(role.SuperAdmin, role.BranchAdmin),
	},
	// verificação de pagamento
	{
		from:  []Status{StatusPendingPayment},
		to:    []Status{StatusConfirmed, StatusCancelled},
		roles: role.NewSet(role.SuperAdmin, role.BranchAdmin),
	},
	// presença
	{
		from:  []Status{StatusConfirmed},
		to:    []Status{StatusInProgress},
		roles: role.NewSet(role.Barber, role.Reception),
	},
	{
		from:  []Status{StatusInProgress},
		to:    []Status{StatusCompleted},
		roles: role.NewSet(role.Barber, role.Reception),
	},
	// não compareceu
	{
		from:  []Status{StatusPending},
		to:    []Status{StatusCancelled},
		roles: role.NewSet(role.Barber, role.Reception),
	},
	{
		from:  []Status{StatusPending},
		to:    []Status{StatusUnderReview},
		roles: role.NewSet(role.Reception, role.SuperAdmin, role.BranchAdmin),
	},
}

// Guard returns the roles allowed to move from → to; ok is false when the
// edge does not exist.
func Guard(from, to Status) (roles role.Set, ok bool) {
	for _, e := range guardTable {
		if contains(e.from, from) && contains(e.to, to) {
			return e.roles, true
		}
	}
	return nil, false
}

// CanTransition checks the guard table without touching any appointment.
func CanTransition(from, to Status, r role.Role) error {
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	roles, ok := Guard(from, to)
	if !ok {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	if !roles.Has(r) {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}

	return nil
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
