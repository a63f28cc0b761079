package estimator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
)

// InsuranceCheck resolves insurability and an indicative premium.
type InsuranceCheck struct {
	insurer lookup.Insurance
	timeout time.Duration
}

func NewInsuranceCheck(insurer lookup.Insurance, timeout time.Duration) *InsuranceCheck {
	return &InsuranceCheck{insurer: insurer, timeout: timeout}
}

// Estimate quotes the property. When the insurer is unreachable the property
// is treated as insurable with no premium; scoring reads a missing premium as
// neutral rather than disqualifying.
func (i *InsuranceCheck) Estimate(ctx context.Context, l model.Listing) *model.InsuranceEstimate {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	quote, err := i.insurer.Quote(callCtx, l.Address, lookup.PropertyDetails{
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		FloorArea:    l.FloorArea,
		LandArea:     l.LandArea,
		PropertyType: l.PropertyType,
	})
	if err != nil {
		if !errors.Is(err, lookup.ErrUnavailable) {
			zap.L().Warn("insurance: quote failed", zap.String("listing", l.ID), zap.Error(err))
		}
		return &model.InsuranceEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			Insurable:     true,
			Note:          "quote unavailable",
			Source:        model.SourceFallback,
		}
	}

	return &model.InsuranceEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		Insurable:     quote.Insurable,
		AnnualPremium: quote.AnnualPremium,
		Insurer:       quote.Insurer,
		Note:          quote.Note,
		Source:        model.SourceExternal,
	}
}
