// Package commission turns completed-appointment revenue into commission,
// retention and period-over-period figures. Amounts are rounded to the
// currency unit (cents) before retention is derived, so commission plus
// retention always equals earnings.
package commission

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

var (
	DefaultRate = decimal.RequireFromString("0.70")

	hundred = decimal.NewFromInt(100)
)

// StaffEarnings is the revenue one barber accumulated from their own
// completed appointments in a period.
type StaffEarnings struct {
	BarberID      uint            `json:"barber_id"`
	Name          string          `json:"name"`
	Active        bool            `json:"active"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalServices int             `json:"total_services"`
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Previous is the window of the same length ending where p starts.
func (p Period) Previous() Period {
	d := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-d), End: p.Start}
}

func (p Period) Valid() bool {
	return p.End.After(p.Start)
}

// ===============================
// Arithmetic
// ===============================

// ValidateRate accepts rates in [0, 1].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return httperr.ErrBusiness("invalid_commission_rate")
	}
	return nil
}

// Commission is the barber's share of earnings, rounded to cents.
func Commission(earnings, rate decimal.Decimal) decimal.Decimal {
	return earnings.Mul(rate).Round(2)
}

// Split returns commission and retention; their sum is exactly earnings.
func Split(earnings, rate decimal.Decimal) (commission, retention decimal.Decimal) {
	commission = Commission(earnings, rate)
	retention = earnings.Sub(commission)
	return commission, retention
}

// Ratio is num/den, or 0 when den is zero. Every ratio shown to users goes
// through it.
func Ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}

// PercentageChange is (current - previous) / previous * 100, or 0 when
// previous is zero.
func PercentageChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

// ===============================
// Report
// ===============================

type Totals struct {
	Earnings               decimal.Decimal `json:"total_earnings"`
	Commissions            decimal.Decimal `json:"total_commissions"`
	Retention              decimal.Decimal `json:"retention"`
	RetentionMargin        float64         `json:"retention_margin"`
	Services               int             `json:"total_services"`
	ActiveBarbers          int             `json:"active_barbers"`
	AvgCommissionPerBarber decimal.Decimal `json:"avg_commission_per_barber"`
}

type Changes struct {
	Earnings      float64 `json:"earnings"`
	Commissions   float64 `json:"commissions"`
	Retention     float64 `json:"retention"`
	Services      float64 `json:"services"`
	AvgCommission float64 `json:"avg_commission"`
}

type BarberLine struct {
	BarberID       uint            `json:"barber_id"`
	Name           string          `json:"name"`
	Active         bool            `json:"active"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	TotalServices  int             `json:"total_services"`
	Commission     decimal.Decimal `json:"commission"`
	Retention      decimal.Decimal `json:"retention"`
	EarningsChange float64         `json:"earnings_change"`
}

type Report struct {
	Period   Period          `json:"period"`
	Rate     decimal.Decimal `json:"commission_rate"`
	Current  Totals          `json:"current"`
	Previous Totals          `json:"previous"`
	Changes  Changes         `json:"changes"`
	Barbers  []BarberLine    `json:"barbers"`
}

// Clone copies r so the copy can be changed freely. Decimals are values,
// only the barber lines need a new backing array.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Barbers != nil {
		cp.Barbers = append([]BarberLine(nil), r.Barbers...)
	}
	return &cp
}

// Summarize aggregates one cohort of staff.
func Summarize(staff []StaffEarnings, rate decimal.Decimal) Totals {
	var t Totals
	t.Earnings = decimal.Zero

	for _, s := range staff {
		t.Earnings = t.Earnings.Add(s.TotalEarnings)
		t.Services += s.TotalServices
		if s.Active {
			t.ActiveBarbers++
		}
	}

	t.Commissions, t.Retention = Split(t.Earnings, rate)
	t.RetentionMargin = Ratio(t.Retention.Mul(hundred), t.Earnings)

	t.AvgCommissionPerBarber = decimal.Zero
	if t.ActiveBarbers > 0 {
		t.AvgCommissionPerBarber = t.Commissions.Div(decimal.NewFromInt(int64(t.ActiveBarbers))).Round(2)
	}

	return t
}

// Build compares the current cohort against the previous period's cohort.
// Barber lines are ranked by commission, highest first.
func Build(period Period, current, previous []StaffEarnings, rate decimal.Decimal) (*Report, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, httperr.ErrBusiness("invalid_period")
	}

	cur := Summarize(current, rate)
	prev := Summarize(previous, rate)

	prevByBarber := make(map[uint]decimal.Decimal, len(previous))
	for _, s := range previous {
		prevByBarber[s.BarberID] = s.TotalEarnings
	}

	lines := make([]BarberLine, 0, len(current))
	for _, s := range current {
		c, r := Split(s.TotalEarnings, rate)
		lines = append(lines, BarberLine{
			BarberID:       s.BarberID,
			Name:           s.Name,
			Active:         s.Active,
			TotalEarnings:  s.TotalEarnings,
			TotalServices:  s.TotalServices,
			Commission:     c,
			Retention:      r,
			EarningsChange: PercentageChange(s.TotalEarnings, prevByBarber[s.BarberID]),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Commission.Equal(lines[j].Commission) {
			return lines[i].Commission.GreaterThan(lines[j].Commission)
		}
		return lines[i].Name < lines[j].Name
	})

	return &Report{
		Period:   period,
		Rate:     rate,
		Current:  cur,
		Previous: prev,
		Changes: Changes{
			Earnings:      PercentageChange(cur.Earnings, prev.Earnings),
			Commissions:   PercentageChange(cur.Commissions, prev.Commissions),
			Retention:     PercentageChange(cur.Retention, prev.Retention),
			Services:      PercentageChange(decimal.NewFromInt(int64(cur.Services)), decimal.NewFromInt(int64(prev.Services))),
			AvgCommission: PercentageChange(cur.AvgCommissionPerBarber, prev.AvgCommissionPerBarber),
		},
		Barbers: lines,
	}, nil
}
