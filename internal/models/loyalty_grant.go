package models

import "time"

const (
	GrantEarned   = "earned"
	GrantWelcome  = "welcome"
	GrantBirthday = "birthday"
	GrantReferral = "referral"
	GrantRedeemed = "redeemed"
)

// LoyaltyGrant is one entry of a client's points ledger. Redemptions carry
// negative points and no expiry.
type LoyaltyGrant struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID uint   `gorm:"index" json:"client_id"`
	Kind     string `gorm:"size:20;index" json:"kind"`
	Points   int64  `json:"points"`

	AppointmentID *uint      `json:"appointment_id"`
	ReferredID    *uint      `json:"referred_id"`
	ExpiresAt     *time.Time `json:"expires_at"`
	GrantedBy     string     `gorm:"size:100" json:"granted_by"`

	CreatedAt time.Time `json:"created_at"`
}
