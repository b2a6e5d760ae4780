package httperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds returned by the settlement engine.
const (
	CodeForbidden          = "forbidden"
	CodeInvalidTransition  = "invalid_transition"
	CodeReasonRequired     = "reason_required"
	CodeInsufficientPoints = "insufficient_points"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode returns the code of a BusinessError, or "" for any other error.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// ======================================================
// STORE
// ======================================================

// StoreError wraps a failure of the persistence layer. It is never retried
// nor swallowed; the caller decides what to do with it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	if BusinessCode(err) != "" {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// ======================================================
// POSTGRES
// ======================================================

// IsExclusionConflict reports an exclusion constraint violation (overlapping
// appointments for the same barber).
func IsExclusionConflict(err error) bool {
	return pgCode(err) == "23P01"
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
