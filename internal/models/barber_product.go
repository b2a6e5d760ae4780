package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarberProduct is a bookable service of the branch catalogue.
type BarberProduct struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`
	Category    string          `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
