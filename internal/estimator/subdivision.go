package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
)

// assumedLandValue stands in when the listing has no usable price.
const assumedLandValue = 100_000

// Subdivision checks feasibility and models the value add of splitting the
// section. Results are keyed by a fingerprint of the inputs so unchanged
// listings skip the zoning lookup on re-runs.
type Subdivision struct {
	council lookup.Council
	cfg     config.SubdivConfig
	timeout time.Duration
}

func NewSubdivision(council lookup.Council, cfg config.SubdivConfig, timeout time.Duration) *Subdivision {
	return &Subdivision{council: council, cfg: cfg, timeout: timeout}
}

// Estimate returns the subdivision estimate, reusing prior when its
// fingerprint matches the listing's current inputs.
func (s *Subdivision) Estimate(ctx context.Context, l model.Listing, prior *model.SubdivisionEstimate) *model.SubdivisionEstimate {
	fp := SubdivisionFingerprint(l.Address, l.District, l.Region, l.LandArea)

	if prior != nil && prior.Fingerprint == fp && prior.SchemaVersion == model.EstimateSchemaVersion {
		zap.L().Debug("subdivision: reusing cached estimate", zap.String("listing", l.ID))
		reused := *prior
		return &reused
	}

	est := s.compute(ctx, l)
	est.SchemaVersion = model.EstimateSchemaVersion
	est.Fingerprint = fp
	return est
}

func (s *Subdivision) compute(ctx context.Context, l model.Listing) *model.SubdivisionEstimate {
	if l.LandArea <= 0 {
		return &model.SubdivisionEstimate{
			Potential: false,
			Reason:    "land area unknown",
			Source:    model.SourceRuleBased,
		}
	}

	zoning, source := s.zoning(ctx, l)
	minLot, ok := s.cfg.MinLotByZone[zoning]
	if !ok {
		minLot = s.cfg.MinLotByZone["RESIDENTIAL_SINGLE"]
		if minLot <= 0 {
			minLot = 600
		}
	}

	if l.LandArea < minLot*2 {
		return &model.SubdivisionEstimate{
			Potential:  false,
			Zoning:     zoning,
			MinLotSize: minLot,
			Reason:     fmt.Sprintf("insufficient land: %.0fsqm (need %.0fsqm for %s)", l.LandArea, minLot*2, zoning),
			Source:     source,
		}
	}

	landValue := l.EffectivePrice() * s.cfg.LandValuePct
	if landValue <= 0 {
		landValue = assumedLandValue
	}
	uplift := math.Round(landValue * s.cfg.UpliftPct)
	extraLots := int(l.LandArea/minLot) - 1

	return &model.SubdivisionEstimate{
		Potential:   true,
		Zoning:      zoning,
		MinLotSize:  minLot,
		ExtraLots:   extraLots,
		Uplift:      uplift,
		Costs:       s.cfg.FixedCosts,
		NetValueAdd: uplift - s.cfg.FixedCosts,
		Reason:      fmt.Sprintf("land %.0fsqm allows ~%d additional lot(s) in %s zone", l.LandArea, extraLots, zoning),
		Source:      source,
	}
}

// zoning resolves the zone from council data, defaulting to single-dwelling
// residential when unavailable.
func (s *Subdivision) zoning(ctx context.Context, l model.Listing) (string, model.Source) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	zone, err := s.council.Zoning(callCtx, l.Address, l.District)
	if err != nil || zone == "" {
		if err != nil && !errors.Is(err, lookup.ErrUnavailable) {
			zap.L().Warn("subdivision: zoning lookup failed", zap.String("listing", l.ID), zap.Error(err))
		}
		return "RESIDENTIAL_SINGLE", model.SourceFallback
	}
	return zone, model.SourceExternal
}
