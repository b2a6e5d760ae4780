// Package loyalty computes points from spend, bonus grants, redemption and
// tier placement. It never touches storage.
package loyalty

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

type BonusKind string

const (
	BonusWelcome  BonusKind = "welcome"
	BonusBirthday BonusKind = "birthday"
	BonusReferral BonusKind = "referral"
)

func ParseBonus(s string) (BonusKind, error) {
	switch k := BonusKind(s); k {
	case BonusWelcome, BonusBirthday, BonusReferral:
		return k, nil
	}
	return "", httperr.ErrBusiness("invalid_bonus_kind")
}

// Tier is reached once cumulative spend is at least MinSpend.
type Tier struct {
	Name     string          `json:"name"`
	MinSpend decimal.Decimal `json:"min_spend"`
}

var DefaultTiers = []Tier{
	{Name: "Bronze", MinSpend: decimal.Zero},
	{Name: "Silver", MinSpend: decimal.NewFromInt(500)},
	{Name: "Gold", MinSpend: decimal.NewFromInt(1500)},
	{Name: "Platinum", MinSpend: decimal.NewFromInt(3000)},
}

// Program is the loyalty configuration of the shop.
type Program struct {
	PointsPerUnit         decimal.Decimal
	MinimumPointsToRedeem int64
	ExpiryDays            int
	WelcomeBonus          int64
	BirthdayBonus         int64
	ReferralBonus         int64
	Tiers                 []Tier
}

// ===============================
// Earning
// ===============================

// PointsEarned is floor(spend / pointsPerUnit). Partial points are dropped.
func PointsEarned(spend, pointsPerUnit decimal.Decimal) int64 {
	if !spend.IsPositive() || !pointsPerUnit.IsPositive() {
		return 0
	}
	return spend.Div(pointsPerUnit).Floor().IntPart()
}

func (p Program) Earned(spend decimal.Decimal) int64 {
	return PointsEarned(spend, p.PointsPerUnit)
}

// Bonus returns the flat grant of kind. Kinds are independent of each other.
func (p Program) Bonus(kind BonusKind) (int64, error) {
	switch kind {
	case BonusWelcome:
		return p.WelcomeBonus, nil
	case BonusBirthday:
		return p.BirthdayBonus, nil
	case BonusReferral:
		return p.ReferralBonus, nil
	}
	return 0, httperr.ErrBusiness("invalid_bonus_kind")
}

// ===============================
// Expiry
// ===============================

// ExpiresAt is the horizon after which a grant made at grantedAt may be
// retired. Nil means points never expire.
func (p Program) ExpiresAt(grantedAt time.Time) *time.Time {
	if p.ExpiryDays <= 0 {
		return nil
	}
	t := grantedAt.AddDate(0, 0, p.ExpiryDays)
	return &t
}

// Expired reports now - grantDate > expiryDays.
func Expired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && now.After(*expiresAt)
}

// ===============================
// Redemption
// ===============================

func (p Program) CanRedeem(balance int64) bool {
	return balance >= p.MinimumPointsToRedeem && balance > 0
}

// Redeem returns the balance left after taking points out of balance.
func Redeem(balance, points, minimum int64) (int64, error) {
	if points <= 0 {
		return balance, httperr.ErrBusiness("invalid_points")
	}
	if balance < minimum || points > balance {
		return balance, httperr.ErrBusiness(httperr.CodeInsufficientPoints)
	}
	return balance - points, nil
}

func (p Program) Redeem(balance, points int64) (int64, error) {
	return Redeem(balance, points, p.MinimumPointsToRedeem)
}

// ===============================
// Tiers
// ===============================

func sortedTiers(tiers []Tier) []Tier {
	out := append([]Tier(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinSpend.LessThan(out[j].MinSpend)
	})
	return out
}

// TierFor returns the highest tier whose threshold does not exceed spend.
// A spend equal to a threshold belongs to that tier.
func TierFor(spend decimal.Decimal, tiers []Tier) (Tier, bool) {
	var (
		found Tier
		ok    bool
	)
	for _, t := range sortedTiers(tiers) {
		if spend.GreaterThanOrEqual(t.MinSpend) {
			found, ok = t, true
		}
	}
	return found, ok
}

// NextTier returns the first tier above spend and how much is missing.
func NextTier(spend decimal.Decimal, tiers []Tier) (Tier, decimal.Decimal, bool) {
	for _, t := range sortedTiers(tiers) {
		if t.MinSpend.GreaterThan(spend) {
			return t, t.MinSpend.Sub(spend), true
		}
	}
	return Tier{}, decimal.Zero, false
}

func (p Program) tiers() []Tier {
	if len(p.Tiers) == 0 {
		return DefaultTiers
	}
	return p.Tiers
}

func (p Program) TierName(spend decimal.Decimal) string {
	t, _ := TierFor(spend, p.tiers())
	return t.Name
}

// ===============================
// Account
// ===============================

type Account struct {
	Balance               int64           `json:"balance"`
	Tier                  string          `json:"tier"`
	TotalSpent            decimal.Decimal `json:"total_spent"`
	NextTier              string          `json:"next_tier,omitempty"`
	SpendToNextTier       decimal.Decimal `json:"spend_to_next_tier"`
	CanRedeem             bool            `json:"can_redeem"`
	MinimumPointsToRedeem int64           `json:"minimum_points_to_redeem"`
	ExpiryDays            int             `json:"expiry_days"`
	WelcomeBonus          int64           `json:"welcome_bonus"`
	BirthdayBonus         int64           `json:"birthday_bonus"`
	ReferralBonus         int64           `json:"referral_bonus"`
}

func (p Program) Account(balance int64, spent decimal.Decimal) Account {
	acc := Account{
		Balance:               balance,
		Tier:                  p.TierName(spent),
		TotalSpent:            spent,
		SpendToNextTier:       decimal.Zero,
		CanRedeem:             p.CanRedeem(balance),
		MinimumPointsToRedeem: p.MinimumPointsToRedeem,
		ExpiryDays:            p.ExpiryDays,
		WelcomeBonus:          p.WelcomeBonus,
		BirthdayBonus:         p.BirthdayBonus,
		ReferralBonus:         p.ReferralBonus,
	}
	if next, missing, ok := NextTier(spent, p.tiers()); ok {
		acc.NextTier = next.Name
		acc.SpendToNextTier = missing
	}
	return acc
}
