package estimator

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/resilience"
	"github.com/harbourstone/dealscout/pkg/vision"
)

// healthyHomesTerms are seller-claimed compliance signals scanned out of the
// listing description. They discount renovation add-ons later.
var healthyHomesTerms = map[string]string{
	"heat pump":       "heat pump installed",
	"insulated":       "insulation claimed",
	"insulation":      "insulation claimed",
	"double glazed":   "double glazing",
	"double glazing":  "double glazing",
	"hrv":             "ventilation system",
	"dvs":             "ventilation system",
	"healthy homes":   "healthy homes compliant claim",
}

// Condition assesses property condition from photos, reusing a prior result
// when the photo fingerprint is unchanged. External calls pass through a
// shared gate so no more than one metered call crosses the configured
// interval batch-wide.
type Condition struct {
	client  vision.Client
	cfg     config.VisionConfig
	gate    *rate.Limiter
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewCondition builds the condition estimator. The gate must be shared by
// every estimator instance in a batch.
func NewCondition(client vision.Client, cfg config.VisionConfig, gate *rate.Limiter) *Condition {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("vision", "assess")
	return &Condition{
		client: client,
		cfg:    cfg,
		gate:   gate,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     time.Minute,
			ShouldTrip:       resilience.IsTransient,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("vision: circuit state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
		retry: retry,
	}
}

// Gate builds the batch-wide limiter for the configured minimum interval
// between externally metered calls.
func Gate(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Estimate returns the condition estimate for a listing. prior is the
// condition from the listing's previous Analysis, or nil. The external call
// is skipped entirely on an unchanged fingerprint; this is the at-most-once
// per unique photo set guarantee, not a TTL cache.
func (c *Condition) Estimate(ctx context.Context, l model.Listing, prior *model.ConditionEstimate) (*model.ConditionEstimate, error) {
	fp := PhotoFingerprint(l.Photos, c.cfg.MaxPhotos)

	if prior != nil && prior.Fingerprint == fp && prior.SchemaVersion == model.EstimateSchemaVersion {
		zap.L().Info("condition: reusing cached assessment",
			zap.String("listing", l.ID),
			zap.String("fingerprint", fp[:12]),
		)
		reused := *prior
		return &reused, nil
	}

	est := c.assess(ctx, l)
	est.SchemaVersion = model.EstimateSchemaVersion
	est.Fingerprint = fp
	est.HealthyHomes = healthyHomesSignals(l.Description)
	return est, nil
}

func (c *Condition) assess(ctx context.Context, l model.Listing) *model.ConditionEstimate {
	if len(l.Photos) == 0 {
		return fallbackCondition("no photos")
	}

	// Throttle before the metered call; a rate-limited wait is never dropped.
	if err := c.gate.Wait(ctx); err != nil {
		return fallbackCondition("cancelled while throttled")
	}

	report, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*vision.Report, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*vision.Report, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
			return c.client.Assess(callCtx, vision.Request{
				PhotoURLs:   l.Photos,
				Address:     l.Address,
				Description: l.Description,
			})
		})
	})
	if err != nil {
		zap.L().Warn("condition: provider unavailable, using fallback",
			zap.String("listing", l.ID),
			zap.Error(err),
		)
		return fallbackCondition("provider unavailable")
	}

	return &model.ConditionEstimate{
		Level:              model.RenoLevel(report.Level),
		RoofReplace:        report.RoofCondition == "NEEDS_REPLACE",
		StructuralConcerns: report.StructuralConcerns,
		KeyItems:           report.KeyItems,
		DirectCost:         report.EstimatedCost,
		DirectWeeks:        report.EstimatedWeeks,
		Confidence:         report.Confidence,
		Source:             model.SourceExternal,
	}
}

// fallbackCondition is the conservative default when photos or the provider
// are unavailable: assume a moderate renovation.
func fallbackCondition(note string) *model.ConditionEstimate {
	return &model.ConditionEstimate{
		Level:      model.RenoModerate,
		KeyItems:   []string{note},
		Confidence: 0.2,
		Source:     model.SourceFallback,
	}
}

func healthyHomesSignals(description string) []string {
	desc := strings.ToLower(description)
	var signals []string
	seen := map[string]bool{}
	for term, signal := range healthyHomesTerms {
		if strings.Contains(desc, term) && !seen[signal] {
			signals = append(signals, signal)
			seen[signal] = true
		}
	}
	sort.Strings(signals)
	return signals
}
