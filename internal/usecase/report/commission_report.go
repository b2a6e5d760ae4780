package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barber-settlement/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
	"github.com/BruksfildServices01/barber-settlement/internal/httperr"
)

// Cache keeps built reports for a while. Implementations degrade to a miss
// on any error of their own.
type Cache interface {
	Get(ctx context.Context, key string) (*commission.Report, bool)
	Set(ctx context.Context, key string, r *commission.Report)
}

type Input struct {
	// BarbershopID restricts the cohort to one branch; nil means all.
	BarbershopID *uint
	Period       commission.Period
}

// CommissionReport builds the commission report of a period against the
// period of equal length right before it, both read from completed
// appointments.
type CommissionReport struct {
	repo        domain.Repository
	cache       Cache
	defaultRate decimal.Decimal
}

func NewCommissionReport(
	repo domain.Repository,
	cache Cache,
	defaultRate decimal.Decimal,
) *CommissionReport {
	return &CommissionReport{
		repo:        repo,
		cache:       cache,
		defaultRate: defaultRate,
	}
}

var reportRoles = role.NewSet(role.SuperAdmin)

// Execute returns nil, nil for actors without reporting authority.
func (uc *CommissionReport) Execute(
	ctx context.Context,
	actor role.Actor,
	in Input,
) (*commission.Report, error) {

	if !reportRoles.Has(actor.Role) {
		return nil, nil
	}

	if !in.Period.Valid() {
		return nil, httperr.ErrBusiness("invalid_period")
	}

	rate := uc.defaultRate
	if in.BarbershopID != nil {
		shop, err := uc.repo.GetBarbershopByID(ctx, *in.BarbershopID)
		if err != nil {
			return nil, err
		}
		if shop.CommissionRate != nil {
			rate = *shop.CommissionRate
		}
	}

	if err := commission.ValidateRate(rate); err != nil {
		return nil, err
	}

	key := cacheKey(in, rate)
	if uc.cache != nil {
		if r, ok := uc.cache.Get(ctx, key); ok {
			return r, nil
		}
	}

	current, err := uc.repo.ListStaffEarnings(ctx, in.BarbershopID, in.Period.Start, in.Period.End)
	if err != nil {
		return nil, err
	}

	prev := in.Period.Previous()
	previous, err := uc.repo.ListStaffEarnings(ctx, in.BarbershopID, prev.Start, prev.End)
	if err != nil {
		return nil, err
	}

	r, err := commission.Build(in.Period, current, previous, rate)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, key, r)
	}

	return r, nil
}

func cacheKey(in Input, rate decimal.Decimal) string {
	branch := "all"
	if in.BarbershopID != nil {
		branch = fmt.Sprint(*in.BarbershopID)
	}
	return fmt.Sprintf(
		"commission:%s:%s:%s:%s",
		branch,
		in.Period.Start.UTC().Format(time.RFC3339),
		in.Period.End.UTC().Format(time.RFC3339),
		rate.String(),
	)
}

// MonthOf is the calendar month containing t, in t's location.
func MonthOf(t time.Time) commission.Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return commission.Period{Start: start, End: start.AddDate(0, 1, 0)}
}
