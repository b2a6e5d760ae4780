package commission

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var march = Period{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
}

func TestCommissionIdentity(t *testing.T) {
	earnings := []string{"0", "0.01", "0.03", "1", "99.99", "123.45", "1000.005", "98765.43"}
	rates := []string{"0", "0.1", "0.333", "0.5", "0.7", "0.755", "1"}

	for _, e := range earnings {
		for _, r := range rates {
			c, ret := Split(d(e), d(r))
			if !c.Add(ret).Equal(d(e)) {
				t.Errorf("earnings %s rate %s: %s + %s != %s", e, r, c, ret, e)
			}
			if c.Exponent() < -2 {
				t.Errorf("commission %s not rounded to cents", c)
			}
		}
	}
}

func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(d("150"), d("0")); got != 0 {
		t.Errorf("expected 0 for zero previous, got %v", got)
	}
	if got := PercentageChange(d("0"), d("0")); got != 0 || math.IsNaN(got) {
		t.Errorf("expected 0 for 0/0, got %v", got)
	}
	if got := PercentageChange(d("150"), d("100")); got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
	if got := PercentageChange(d("75"), d("100")); got != -25 {
		t.Errorf("expected -25, got %v", got)
	}
	if got := Ratio(d("5"), d("0")); got != 0 {
		t.Errorf("expected guarded ratio 0, got %v", got)
	}
}

func TestBuildReport(t *testing.T) {
	current := []StaffEarnings{
		{BarberID: 1, Name: "Ana", Active: true, TotalEarnings: d("1000.00"), TotalServices: 20},
		{BarberID: 2, Name: "Bruno", Active: true, TotalEarnings: d("500.50"), TotalServices: 11},
		{BarberID: 3, Name: "Caio", Active: false, TotalEarnings: d("0"), TotalServices: 0},
	}
	previous := []StaffEarnings{
		{BarberID: 1, Name: "Ana", Active: true, TotalEarnings: d("800.00"), TotalServices: 16},
	}

	r, err := Build(march, current, previous, DefaultRate)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !r.Current.Earnings.Equal(d("1500.50")) {
		t.Errorf("expected earnings 1500.50, got %s", r.Current.Earnings)
	}
	if !r.Current.Commissions.Equal(d("1050.35")) {
		t.Errorf("expected commissions 1050.35, got %s", r.Current.Commissions)
	}
	if !r.Current.Commissions.Add(r.Current.Retention).Equal(r.Current.Earnings) {
		t.Error("commission identity broken")
	}
	if r.Current.ActiveBarbers != 2 {
		t.Errorf("expected 2 active barbers, got %d", r.Current.ActiveBarbers)
	}
	if !r.Current.AvgCommissionPerBarber.Equal(d("525.18")) {
		t.Errorf("expected avg 525.18, got %s", r.Current.AvgCommissionPerBarber)
	}
	if r.Current.Services != 31 {
		t.Errorf("expected 31 services, got %d", r.Current.Services)
	}

	if len(r.Barbers) != 3 || r.Barbers[0].BarberID != 1 || r.Barbers[2].BarberID != 3 {
		t.Fatalf("expected ranking by commission, got %+v", r.Barbers)
	}
	if !r.Barbers[0].Commission.Equal(d("700")) {
		t.Errorf("expected Ana commission 700, got %s", r.Barbers[0].Commission)
	}
	if r.Barbers[0].EarningsChange != 25 {
		t.Errorf("expected Ana +25%%, got %v", r.Barbers[0].EarningsChange)
	}
	if r.Barbers[1].EarningsChange != 0 {
		t.Errorf("expected Bruno 0 without history, got %v", r.Barbers[1].EarningsChange)
	}

	if r.Changes.Earnings != 87.56 {
		t.Errorf("expected earnings change 87.56, got %v", r.Changes.Earnings)
	}
}

func TestBuildWithoutActiveBarbers(t *testing.T) {
	r, err := Build(march, nil, nil, DefaultRate)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !r.Current.AvgCommissionPerBarber.IsZero() {
		t.Errorf("expected 0 average, got %s", r.Current.AvgCommissionPerBarber)
	}
	if r.Current.RetentionMargin != 0 || r.Changes.Earnings != 0 {
		t.Error("empty report must not produce ratios")
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	if _, err := Build(march, nil, nil, d("1.2")); !httperr.IsBusiness(err, "invalid_commission_rate") {
		t.Errorf("expected invalid_commission_rate, got %v", err)
	}
	if _, err := Build(Period{Start: march.End, End: march.Start}, nil, nil, DefaultRate); !httperr.IsBusiness(err, "invalid_period") {
		t.Errorf("expected invalid_period, got %v", err)
	}
}

func TestPreviousPeriod(t *testing.T) {
	prev := march.Previous()
	if !prev.End.Equal(march.Start) {
		t.Errorf("expected previous to end at %v, got %v", march.Start, prev.End)
	}
	if prev.End.Sub(prev.Start) != march.End.Sub(march.Start) {
		t.Error("previous period must have the same length")
	}
}
