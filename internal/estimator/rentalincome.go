package estimator

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/resilience"
)

// RentalIncome estimates weekly rent from tenancy bond medians, widening to
// the region once when district samples are too thin.
type RentalIncome struct {
	tenancy lookup.Tenancy
	cfg     config.RentalEstConfig
	timeout time.Duration
	retry   resilience.RetryConfig
}

func NewRentalIncome(tenancy lookup.Tenancy, cfg config.RentalEstConfig, timeout time.Duration) *RentalIncome {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("tenancy", "bond_rents")
	return &RentalIncome{tenancy: tenancy, cfg: cfg, timeout: timeout, retry: retry}
}

func (r *RentalIncome) Estimate(ctx context.Context, l model.Listing) *model.RentalIncomeEstimate {
	widened := false

	data, err := r.query(ctx, lookup.RentQuery{
		Suburb:   l.Suburb,
		District: l.District,
		Region:   l.Region,
		Bedrooms: l.Bedrooms,
	})
	if err == nil && data.Samples < r.cfg.MinBondSamples {
		widened = true
		data, err = r.query(ctx, lookup.RentQuery{
			Suburb:     l.Suburb,
			District:   l.District,
			Region:     l.Region,
			Bedrooms:   l.Bedrooms,
			RegionWide: true,
		})
	}
	if err != nil {
		if !errors.Is(err, lookup.ErrUnavailable) {
			zap.L().Warn("rental: bond lookup failed", zap.String("listing", l.ID), zap.Error(err))
		}
		return r.fallback(l)
	}
	if data.Samples < r.cfg.MinBondSamples || data.MedianWeeklyRent <= 0 {
		return r.fallback(l)
	}

	// Listing agents sometimes publish an appraisal; prefer bond data but
	// keep the larger figure visible in the samples note only via data.
	weekly := data.MedianWeeklyRent

	return &model.RentalIncomeEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		WeeklyRent:    weekly,
		AnnualRent:    weekly * r.cfg.RentWeeks,
		BondSamples:   data.Samples,
		SearchWidened: widened,
		Source:        model.SourceExternal,
	}
}

func (r *RentalIncome) query(ctx context.Context, q lookup.RentQuery) (lookup.RentData, error) {
	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (lookup.RentData, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.tenancy.BondRents(callCtx, q)
	})
}

// fallback uses the agent's published rent hint when present, else the
// configured per-bedroom base rates.
func (r *RentalIncome) fallback(l model.Listing) *model.RentalIncomeEstimate {
	weekly := l.WeeklyRentHint
	if weekly <= 0 {
		beds := l.Bedrooms
		if beds < 1 {
			beds = 3
		}
		if beds > 6 {
			beds = 6
		}
		weekly = r.cfg.FallbackBase[strconv.Itoa(beds)]
	}
	return &model.RentalIncomeEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		WeeklyRent:    weekly,
		AnnualRent:    weekly * r.cfg.RentWeeks,
		Source:        model.SourceFallback,
	}
}
