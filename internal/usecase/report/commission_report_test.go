package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
	"github.com/BruksfildServices01/barber-settlement/internal/infra/repository"
	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

type mapCache struct {
	items map[string]*commission.Report
	hits  int
}

func (c *mapCache) Get(_ context.Context, key string) (*commission.Report, bool) {
	r, ok := c.items[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *mapCache) Set(_ context.Context, key string, r *commission.Report) {
	c.items[key] = r
}

func at(day int, month time.Month) *time.Time {
	t := time.Date(2025, month, day, 15, 0, 0, 0, time.UTC)
	return &t
}

func seed(t *testing.T) (*repository.MemoryRepository, *models.Barbershop) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	shop := repo.AddBarbershop(models.Barbershop{Name: "Centro"})
	ana := repo.AddUser(models.User{BarbershopID: shop.ID, Name: "Ana", Role: "barber", Active: true})
	bruno := repo.AddUser(models.User{BarbershopID: shop.ID, Name: "Bruno", Role: "barber", Active: true})

	completed := func(barber uint, price int64, when *time.Time) {
		repo.AddAppointment(models.Appointment{
			BarbershopID: shop.ID,
			BarberID:     barber,
			Status:       "completed",
			TotalPrice:   decimal.NewFromInt(price),
			CompletedAt:  when,
		})
	}

	completed(ana.ID, 300, at(5, time.March))
	completed(ana.ID, 200, at(20, time.March))
	completed(bruno.ID, 100, at(7, time.March))
	completed(ana.ID, 400, at(10, time.February))

	return repo, shop
}

var march = commission.Period{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
}

func TestCommissionReportFromHistory(t *testing.T) {
	repo, shop := seed(t)
	uc := NewCommissionReport(repo, nil, commission.DefaultRate)

	r, err := uc.Execute(context.Background(), role.Actor{Role: role.SuperAdmin}, Input{BarbershopID: &shop.ID, Period: march})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !r.Current.Earnings.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected 600 earnings, got %s", r.Current.Earnings)
	}
	if !r.Current.Commissions.Equal(decimal.NewFromInt(420)) || !r.Current.Retention.Equal(decimal.NewFromInt(180)) {
		t.Errorf("expected 420/180, got %s/%s", r.Current.Commissions, r.Current.Retention)
	}
	if !r.Previous.Earnings.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected previous 400 from February, got %s", r.Previous.Earnings)
	}
	if r.Changes.Earnings != 50 {
		t.Errorf("expected +50%%, got %v", r.Changes.Earnings)
	}
	if r.Barbers[0].Name != "Ana" || r.Barbers[0].EarningsChange != 25 {
		t.Errorf("unexpected ranking %+v", r.Barbers)
	}
}

func TestCommissionReportRoleGate(t *testing.T) {
	repo, shop := seed(t)
	uc := NewCommissionReport(repo, nil, commission.DefaultRate)

	for _, r := range []role.Role{role.BranchAdmin, role.Reception, role.Barber, role.Client} {
		got, err := uc.Execute(context.Background(), role.Actor{BarbershopID: shop.ID, Role: r}, Input{BarbershopID: &shop.ID, Period: march})
		if err != nil || got != nil {
			t.Errorf("%s: expected no report and no error, got %v, %v", r, got, err)
		}
	}
}

func TestCommissionReportBranchRateAndCache(t *testing.T) {
	repo, shop := seed(t)
	half := decimal.RequireFromString("0.5")
	s := *shop
	s.CommissionRate = &half
	repo.AddBarbershop(s)

	cache := &mapCache{items: map[string]*commission.Report{}}
	uc := NewCommissionReport(repo, cache, commission.DefaultRate)
	super := role.Actor{Role: role.SuperAdmin}

	r, err := uc.Execute(context.Background(), super, Input{BarbershopID: &shop.ID, Period: march})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !r.Current.Commissions.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected branch rate commissions 300, got %s", r.Current.Commissions)
	}

	repo.FailOn("ListStaffEarnings", errors.New("down"))
	if _, err := uc.Execute(context.Background(), super, Input{BarbershopID: &shop.ID, Period: march}); err != nil {
		t.Fatalf("expected cached report, got %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.hits)
	}

	_, err = uc.Execute(context.Background(), super, Input{Period: march})
	if !httperr.IsStore(err) {
		t.Errorf("expected StoreError for uncached cohort, got %v", err)
	}
}

func TestCommissionReportInvalidPeriod(t *testing.T) {
	repo, _ := seed(t)
	_, err := NewCommissionReport(repo, nil, commission.DefaultRate).
		Execute(context.Background(), role.Actor{Role: role.SuperAdmin}, Input{Period: commission.Period{Start: march.End, End: march.Start}})
	if !httperr.IsBusiness(err, "invalid_period") {
		t.Errorf("expected invalid_period, got %v", err)
	}
}

func TestMonthOf(t *testing.T) {
	p := MonthOf(time.Date(2025, 3, 17, 9, 30, 0, 0, time.UTC))
	if !p.Start.Equal(march.Start) || !p.End.Equal(march.End) {
		t.Errorf("expected March, got %v - %v", p.Start, p.End)
	}
}
