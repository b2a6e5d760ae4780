package payment

import (
	"time"

	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

// DefaultFalseVoucherThreshold is the false-voucher count that blacklists a
// client when the branch does not configure its own.
const DefaultFalseVoucherThreshold = 3

// ApplyRejection records one rejected payment on f. It returns true only when
// this call is the one that blacklisted the client. Blacklisted is never
// cleared here.
func ApplyRejection(f *models.SecurityFlags, fraud bool, threshold int, now time.Time) bool {
	f.RejectedPaymentsCount++
	if fraud {
		f.FalseVouchersCount++
	}
	f.LastRejectionDate = &now

	if f.Blacklisted || threshold <= 0 {
		return false
	}

	if f.FalseVouchersCount >= threshold {
		f.Blacklisted = true
		return true
	}
	return false
}

// Clear is the manual reset: both counters go to zero together with the
// blacklist.
func Clear(f *models.SecurityFlags) {
	f.FalseVouchersCount = 0
	f.RejectedPaymentsCount = 0
	f.Blacklisted = false
}
