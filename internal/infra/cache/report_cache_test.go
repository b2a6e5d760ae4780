package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
)

func TestLRUReportCacheExpires(t *testing.T) {
	c, err := NewLRUReportCache(4, time.Minute)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	r := &commission.Report{Rate: decimal.RequireFromString("0.7")}
	c.Set(context.Background(), "k", r)

	got, ok := c.Get(context.Background(), "k")
	if !ok || !got.Rate.Equal(r.Rate) {
		t.Fatalf("expected cached report, got %v %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestNewFallsBackToLRU(t *testing.T) {
	c, err := New(nil, 8, time.Minute)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	if _, ok := c.(*LRUReportCache); !ok {
		t.Errorf("expected LRU cache without redis, got %T", c)
	}
}

func TestLRUReportCacheIsolatesCallers(t *testing.T) {
	c, err := NewLRUReportCache(4, time.Minute)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	r := &commission.Report{
		Rate:    decimal.RequireFromString("0.7"),
		Barbers: []commission.BarberLine{{BarberID: 1, Name: "Ana"}},
	}
	c.Set(context.Background(), "k", r)

	// o chamador original continua mexendo no relatório
	r.Barbers[0].Name = "alterado"
	r.Rate = decimal.Zero

	first, _ := c.Get(context.Background(), "k")
	first.Barbers[0].Name = "outro"
	first.Current.Services = 99

	second, ok := c.Get(context.Background(), "k")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if second.Barbers[0].Name != "Ana" || second.Current.Services != 0 || !second.Rate.Equal(decimal.RequireFromString("0.7")) {
		t.Errorf("cached report was changed through a caller: %+v", second)
	}
}
