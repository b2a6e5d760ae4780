package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TransactionKindService = "service"

// Transaction books revenue at the point of service.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"reference"`

	BarbershopID  uint `gorm:"index" json:"barbershop_id"`
	AppointmentID uint `gorm:"index" json:"appointment_id"`
	ClientID      uint `json:"client_id"`
	BarberID      uint `json:"barber_id"`

	Kind          string          `gorm:"size:20" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:30" json:"payment_method"`
	RecordedBy    string          `gorm:"size:100" json:"recorded_by"`

	CreatedAt time.Time `json:"created_at"`
}
