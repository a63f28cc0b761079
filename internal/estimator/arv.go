package estimator

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/resilience"
)

// ARV estimates after-repair value from comparable sales. The search is
// widened at most once before falling back to listing-level estimates.
type ARV struct {
	comps   lookup.ComparableSales
	cfg     config.ARVConfig
	reno    config.RenoConfig
	timeout time.Duration
	retry   resilience.RetryConfig
}

func NewARV(comps lookup.ComparableSales, cfg config.ARVConfig, reno config.RenoConfig, timeout time.Duration) *ARV {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("comps", "search")
	return &ARV{comps: comps, cfg: cfg, reno: reno, timeout: timeout, retry: retry}
}

func (a *ARV) Estimate(ctx context.Context, l model.Listing) *model.ARVEstimate {
	since := time.Now().AddDate(0, -a.cfg.RecencyMonths, 0)
	widened := false

	sales, err := a.search(ctx, lookup.CompQuery{
		Suburb:      l.Suburb,
		Region:      l.Region,
		Bedrooms:    l.Bedrooms,
		LandArea:    l.LandArea,
		LandBandPct: a.cfg.LandBandPct,
		Since:       since,
	})
	if err == nil && len(sales) < a.cfg.MinComparables {
		widened = true
		sales, err = a.search(ctx, lookup.CompQuery{
			Suburb:     l.Suburb,
			Region:     l.Region,
			Bedrooms:   l.Bedrooms,
			Since:      since,
			RegionWide: true,
		})
	}
	if err != nil {
		if !errors.Is(err, lookup.ErrUnavailable) {
			zap.L().Warn("arv: comparable search failed", zap.String("listing", l.ID), zap.Error(err))
		}
		return a.fallback(l)
	}
	if len(sales) < a.cfg.MinComparables {
		return a.fallback(l)
	}

	perSqm := pricesPerSqm(sales)
	if len(perSqm) < a.cfg.MinComparables {
		return a.fallback(l)
	}

	floor := floorAreaFor(l, a.reno.FloorAreaByBed)
	medianPPS := median(perSqm)
	value := medianPPS * floor

	var adjustments float64
	if l.HasGarage {
		adjustments += a.cfg.GarageAdj
	}
	if l.LandArea > a.cfg.LargeSectionSqm {
		adjustments += a.cfg.LargeSectionAdj
	}
	value += adjustments

	keep := sales
	if len(keep) > 5 {
		keep = keep[:5]
	}

	return &model.ARVEstimate{
		SchemaVersion:   model.EstimateSchemaVersion,
		Value:           math.Round(value),
		PricePerSqm:     math.Round(medianPPS),
		ComparablesUsed: len(perSqm),
		SearchWidened:   widened,
		Adjustments:     adjustments,
		Confidence:      a.confidence(len(perSqm), perSqm, l.MarketEstimate > 0),
		Source:          model.SourceExternal,
		Comparables:     keep,
	}
}

func (a *ARV) search(ctx context.Context, q lookup.CompQuery) ([]model.Sale, error) {
	return resilience.DoVal(ctx, a.retry, func(ctx context.Context) ([]model.Sale, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return a.comps.Search(callCtx, q)
	})
}

// fallback applies the degradation chain: market estimate with a renovation
// uplift, then asking price with a higher assumed uplift.
func (a *ARV) fallback(l model.Listing) *model.ARVEstimate {
	if l.MarketEstimate > 0 {
		return &model.ARVEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			Value:         math.Round(l.MarketEstimate * (1 + a.cfg.MarketUpliftPct)),
			Confidence:    30,
			Source:        model.SourceFallback,
		}
	}
	price := l.EffectivePrice()
	if price <= 0 {
		return &model.ARVEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			Confidence:    0,
			Source:        model.SourceFallback,
		}
	}
	return &model.ARVEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		Value:         math.Round(price * (1 + a.cfg.AskingUpliftPct)),
		Confidence:    10,
		Source:        model.SourceFallback,
	}
}

// confidence scores 0-100 from comparable count, price consistency and
// whether an independent market estimate corroborates.
func (a *ARV) confidence(n int, perSqm []float64, hasMarketEstimate bool) float64 {
	var score float64
	switch {
	case n >= 8:
		score += 40
	case n >= 5:
		score += 30
	case n >= 3:
		score += 20
	case n >= 1:
		score += 10
	}

	if len(perSqm) >= 2 {
		cv := coefficientOfVariation(perSqm)
		switch {
		case cv < 0.1:
			score += 30
		case cv < 0.2:
			score += 20
		case cv < 0.3:
			score += 10
		}
	}

	if hasMarketEstimate {
		score += 15
	}

	// Recency is already enforced by the search window.
	score += 15

	return math.Min(100, score)
}

func pricesPerSqm(sales []model.Sale) []float64 {
	var out []float64
	for _, s := range sales {
		if s.Price > 0 && s.FloorArea > 0 {
			out = append(out, s.Price/s.FloorArea)
		}
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func coefficientOfVariation(vals []float64) float64 {
	if len(vals) == 0 {
		return 1
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	avg := sum / float64(len(vals))
	if avg <= 0 {
		return 1
	}
	var variance float64
	for _, v := range vals {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(vals))
	return math.Sqrt(variance) / avg
}
