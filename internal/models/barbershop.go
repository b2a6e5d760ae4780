package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Barbershop is a branch. Nil settings fall back to the service defaults.
type Barbershop struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Name              string `gorm:"size:100;not null" json:"name"`
	Slug              string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone             string `gorm:"size:20" json:"phone"`
	Address           string `gorm:"size:255" json:"address"`
	Timezone          string `gorm:"size:60" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`

	PaymentRequired       bool             `gorm:"default:false" json:"payment_required"`
	CommissionRate        *decimal.Decimal `gorm:"type:numeric(5,4)" json:"commission_rate"`
	FalseVoucherThreshold *int             `json:"false_voucher_threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
