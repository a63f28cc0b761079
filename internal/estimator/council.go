package estimator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
)

// fallbackAnnualRates is the nationwide figure used when the council lookup
// is unavailable.
const fallbackAnnualRates = 3000

// CouncilRates resolves annual rates for a listing.
type CouncilRates struct {
	council lookup.Council
	timeout time.Duration
}

func NewCouncilRates(council lookup.Council, timeout time.Duration) *CouncilRates {
	return &CouncilRates{council: council, timeout: timeout}
}

func (c *CouncilRates) Estimate(ctx context.Context, l model.Listing) *model.CouncilEstimate {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rates, err := c.council.AnnualRates(callCtx, l.Address, l.District)
	if err != nil || rates <= 0 {
		if err != nil && !errors.Is(err, lookup.ErrUnavailable) {
			zap.L().Warn("council: rates lookup failed", zap.String("listing", l.ID), zap.Error(err))
		}
		return &model.CouncilEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			AnnualRates:   fallbackAnnualRates,
			Source:        model.SourceFallback,
		}
	}

	return &model.CouncilEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		AnnualRates:   rates,
		Source:        model.SourceExternal,
	}
}
