package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint       `gorm:"index" json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	BarberID uint `gorm:"index" json:"barber_id"`
	Barber   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClientID uint   `gorm:"index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Status string `gorm:"size:20;index;default:'pending'" json:"status"`

	// Services are kept in booking order (Position).
	Services   []AppointmentService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"services"`
	TotalPrice decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0" json:"total_price"`

	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`

	// Payment
	PaymentMethod         string     `gorm:"size:30" json:"payment_method"`
	VoucherNumber         string     `gorm:"size:80" json:"voucher_number"`
	VoucherURL            string     `gorm:"size:255" json:"voucher_url"`
	PaymentVerified       bool       `json:"payment_verified"`
	PaymentVerifiedBy     string     `gorm:"size:100" json:"payment_verified_by"`
	PaymentVerifiedAt     *time.Time `json:"payment_verified_at"`
	PaymentRejectedReason string     `gorm:"size:255" json:"payment_rejected_reason"`

	// Review
	ApprovedBy   string     `gorm:"size:100" json:"approved_by"`
	ApprovedAt   *time.Time `json:"approved_at"`
	RejectedBy   string     `gorm:"size:100" json:"rejected_by"`
	RejectedAt   *time.Time `json:"rejected_at"`
	ReviewReason string     `gorm:"size:255" json:"review_reason"`
	Notes        string     `gorm:"size:255" json:"notes"`

	// Attendance
	AttendanceMarked bool       `json:"attendance_marked"`
	AttendanceTime   *time.Time `json:"attendance_time"`
	NoShow           bool       `json:"no_show"`

	BeforePhotoURL string     `gorm:"size:255" json:"before_photo_url"`
	AfterPhotoURL  string     `gorm:"size:255" json:"after_photo_url"`
	CancelledAt    *time.Time `json:"cancelled_at"`
	CompletedAt    *time.Time `gorm:"index" json:"completed_at"`

	LoyaltyAwarded bool `json:"loyalty_awarded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentService struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"index" json:"appointment_id"`
	Position      int  `json:"position"`

	BarberProductID uint            `json:"barber_product_id"`
	Name            string          `gorm:"size:100" json:"name"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	DurationMin     int             `json:"duration_min"`
}

// Clone returns a deep copy safe to mutate without touching ap.
func (ap *Appointment) Clone() *Appointment {
	cp := *ap
	if ap.Services != nil {
		cp.Services = append([]AppointmentService(nil), ap.Services...)
	}
	return &cp
}
