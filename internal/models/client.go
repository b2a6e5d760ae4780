package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cliente simples, sem login, vinculado à barbearia
type Client struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	Birthday     *time.Time `json:"birthday"`
	ReferredByID *uint      `json:"referred_by_id"`

	Security SecurityFlags `gorm:"embedded;embeddedPrefix:security_" json:"security_flags"`
	Loyalty  LoyaltyState  `gorm:"embedded;embeddedPrefix:loyalty_" json:"loyalty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SecurityFlags is changed only by payment rejection and by the explicit
// clear operation.
type SecurityFlags struct {
	FalseVouchersCount    int        `gorm:"not null;default:0" json:"false_vouchers_count"`
	RejectedPaymentsCount int        `gorm:"not null;default:0" json:"rejected_payments_count"`
	Blacklisted           bool       `gorm:"not null;default:false" json:"blacklisted"`
	LastRejectionDate     *time.Time `json:"last_rejection_date"`
}

type LoyaltyState struct {
	Points          int64           `gorm:"not null;default:0" json:"points"`
	Tier            string          `gorm:"size:20" json:"tier"`
	TotalSpent      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_spent"`
	LastWarningDate *time.Time      `json:"last_warning_date"`
}
