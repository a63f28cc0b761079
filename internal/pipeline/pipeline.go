// Package pipeline orchestrates the full listing evaluation: hard filters,
// the estimator suite, the financial models, the strategy decision and the
// composite score, persisted atomically per listing.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/estimator"
	"github.com/harbourstone/dealscout/internal/filter"
	"github.com/harbourstone/dealscout/internal/finance"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/resilience"
	"github.com/harbourstone/dealscout/internal/scorer"
	"github.com/harbourstone/dealscout/internal/store"
	"github.com/harbourstone/dealscout/pkg/vision"
)

// Clients bundles the external collaborators the pipeline consumes.
type Clients struct {
	Vision       vision.Client
	Demographics lookup.Demographics
	Comparables  lookup.ComparableSales
	Tenancy      lookup.Tenancy
	Council      lookup.Council
	Insurance    lookup.Insurance
}

// Orchestrator runs listings through every evaluation stage. It is safe for
// concurrent use; the vision gate is shared so batch concurrency never
// multiplies the metered call rate.
type Orchestrator struct {
	store store.Store
	cfg   *config.Config

	filters     *filter.Stage
	demo        lookup.Demographics
	condition   *estimator.Condition
	renovation  *estimator.Renovation
	timeline    *estimator.Timeline
	arv         *estimator.ARV
	rent        *estimator.RentalIncome
	council     *estimator.CouncilRates
	subdivision *estimator.Subdivision
	insurance   *estimator.InsuranceCheck
	scorer      *scorer.Scorer
}

// New wires the orchestrator. All estimators share one vision gate built from
// the configured call interval.
func New(st store.Store, cfg *config.Config, clients Clients) *Orchestrator {
	gate := estimator.Gate(cfg.Vision.CallInterval)
	return &Orchestrator{
		store:       st,
		cfg:         cfg,
		filters:     filter.New(cfg.Filters, clients.Demographics),
		demo:        clients.Demographics,
		condition:   estimator.NewCondition(clients.Vision, cfg.Vision, gate),
		renovation:  estimator.NewRenovation(cfg.Reno),
		timeline:    estimator.NewTimeline(cfg.Reno),
		arv:         estimator.NewARV(clients.Comparables, cfg.ARV, cfg.Reno, cfg.Lookup.Timeout),
		rent:        estimator.NewRentalIncome(clients.Tenancy, cfg.Rental, cfg.Lookup.Timeout),
		council:     estimator.NewCouncilRates(clients.Council, cfg.Lookup.Timeout),
		subdivision: estimator.NewSubdivision(clients.Council, cfg.Subdiv, cfg.Lookup.Timeout),
		insurance:   estimator.NewInsuranceCheck(clients.Insurance, cfg.Lookup.Timeout),
		scorer:      scorer.New(cfg.Scoring),
	}
}

// Analyze runs the full pipeline for a single listing and returns the
// persisted analysis. Filter rejections are not errors: the returned analysis
// carries the rejecting rule results.
func (o *Orchestrator) Analyze(ctx context.Context, listingID string) (*model.Analysis, error) {
	l, err := o.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	a, item := o.process(ctx, *l)
	if a == nil {
		return nil, eris.New("pipeline: " + item.Reason)
	}
	return a, nil
}

// RunBatch evaluates every listing matched by the filter, bounded by the
// configured concurrency, then recomputes ranks across all scored analyses.
// Listing failures are recorded per item; only infrastructure failures abort
// the batch.
func (o *Orchestrator) RunBatch(ctx context.Context, sel store.ListingFilter) (*model.BatchResult, error) {
	listings, err := o.store.ListListings(ctx, sel)
	if err != nil {
		return nil, err
	}

	result := &model.BatchResult{
		BatchID:   uuid.New().String(),
		StartedAt: time.Now(),
	}

	zap.L().Info("batch: starting",
		zap.String("batch", result.BatchID),
		zap.Int("listings", len(listings)),
		zap.Int("concurrency", o.cfg.Batch.MaxConcurrentListings),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Batch.MaxConcurrentListings)

	for _, l := range listings {
		l := l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, item := o.process(gctx, l)
			mu.Lock()
			result.Items = append(result.Items, item)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch aborted")
	}

	for _, item := range result.Items {
		switch item.Outcome {
		case model.OutcomeAnalyzed:
			result.Analyzed++
		case model.OutcomeRejected:
			result.Rejected++
		case model.OutcomeSkipped:
			result.Skipped++
		case model.OutcomeFailed:
			result.Failed++
		}
	}

	if err := o.Rerank(ctx); err != nil {
		return nil, err
	}

	result.Duration = time.Since(result.StartedAt).Milliseconds()
	zap.L().Info("batch: finished",
		zap.String("batch", result.BatchID),
		zap.Int("analyzed", result.Analyzed),
		zap.Int("rejected", result.Rejected),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int64("duration_ms", result.Duration),
	)
	return result, nil
}

// Rerank recomputes 1-based ranks over every scored analysis, ordered by
// composite score descending, and persists them.
func (o *Orchestrator) Rerank(ctx context.Context) error {
	analyses, err := o.store.ListRanked(ctx, rerankLimit)
	if err != nil {
		return err
	}
	if len(analyses) == 0 {
		return nil
	}

	ptrs := make([]*model.Analysis, len(analyses))
	for i := range analyses {
		ptrs[i] = &analyses[i]
	}
	scorer.Rank(ptrs)

	ranks := make(map[string]int, len(ptrs))
	for _, a := range ptrs {
		ranks[a.ListingID] = a.Rank
	}
	return o.store.UpdateRanks(ctx, ranks)
}

const rerankLimit = 10_000

// process runs one listing through every stage and records its outcome. The
// analysis record is written once, whole, at the end; a failure along the way
// leaves any prior analysis untouched.
func (o *Orchestrator) process(ctx context.Context, l model.Listing) (*model.Analysis, model.BatchItem) {
	item := model.BatchItem{ListingID: l.ID}

	if err := validate(l); err != nil {
		zap.L().Warn("pipeline: listing skipped",
			zap.String("listing", l.ID),
			zap.Error(err),
		)
		o.setStatus(ctx, l.ID, l.FilterStatus, model.AnalysisStatusFailed, err.Error())
		item.Outcome = model.OutcomeSkipped
		item.Reason = err.Error()
		return nil, item
	}

	o.setStatus(ctx, l.ID, l.FilterStatus, model.AnalysisStatusInProgress, "")

	now := time.Now()
	a := &model.Analysis{
		ListingID: l.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	prior, err := o.store.GetAnalysis(ctx, l.ID)
	if err != nil {
		return nil, o.fail(ctx, l, item, eris.Wrap(err, "pipeline: load prior analysis"))
	}
	if prior != nil && !prior.CreatedAt.IsZero() {
		a.CreatedAt = prior.CreatedAt
	}

	a.FilterResults = o.filters.Evaluate(ctx, l)
	a.Demand = filter.DemandProfile(l)

	// A rejection only refreshes the filter verdicts. Any prior estimates stay
	// in place so their cached fingerprints survive a temporary rejection, such
	// as a price spike over the ceiling.
	if rejected, reason := filter.Rejected(a.FilterResults); rejected {
		if prior != nil {
			prior.FilterResults = a.FilterResults
			prior.Demand = a.Demand
			prior.UpdatedAt = time.Now()
			a = prior
		}
		if err := o.store.SaveAnalysis(ctx, a); err != nil {
			return nil, o.fail(ctx, l, item, err)
		}
		o.setStatus(ctx, l.ID, model.FilterStatusRejected, model.AnalysisStatusCompleted, reason)
		item.Outcome = model.OutcomeRejected
		item.Reason = reason
		return a, item
	}

	var priorCond *model.ConditionEstimate
	var priorSub *model.SubdivisionEstimate
	if prior != nil {
		priorCond = prior.Condition
		priorSub = prior.Subdivision
	}

	cond, err := o.condition.Estimate(ctx, l, priorCond)
	if err != nil {
		return nil, o.fail(ctx, l, item, err)
	}
	a.Condition = cond
	a.Renovation = o.renovation.Estimate(l, cond)
	a.Timeline = o.timeline.Estimate(cond, a.Renovation)
	a.ARV = o.arv.Estimate(ctx, l)
	a.RentalIncome = o.rent.Estimate(ctx, l)
	a.Council = o.council.Estimate(ctx, l)
	a.Subdivision = o.subdivision.Estimate(ctx, l, priorSub)
	a.Insurance = o.insurance.Estimate(ctx, l)

	if demo, err := o.demo.Lookup(ctx, l.District, l.Region); err == nil {
		a.Population = demo.Population
		a.ProjectedGrowth = demo.ProjectedGrowth
	}

	if err := ctx.Err(); err != nil {
		return nil, o.fail(ctx, l, item, err)
	}

	in := o.financeInputs(l, a)
	a.Flip = finance.Flip(in, o.cfg.Flip, o.cfg.Strategy.FlipROITarget)
	a.Rental = finance.Rental(in, o.cfg.Hold, o.cfg.Strategy.RentalYieldTarget)
	a.Decision = finance.Decide(a.Flip, a.Rental, a.Subdivision, o.cfg.Strategy)
	a.Score = o.scorer.Score(a)
	a.UpdatedAt = time.Now()

	if err := o.store.SaveAnalysis(ctx, a); err != nil {
		return nil, o.fail(ctx, l, item, err)
	}
	o.setStatus(ctx, l.ID, model.FilterStatusPassed, model.AnalysisStatusCompleted, "")

	zap.L().Info("pipeline: listing analyzed",
		zap.String("listing", l.ID),
		zap.Float64("score", a.Score.Score),
		zap.String("verdict", string(a.Score.Verdict)),
		zap.String("strategy", a.Decision.Recommended),
	)

	item.Outcome = model.OutcomeAnalyzed
	item.Score = a.Score.Score
	item.Verdict = a.Score.Verdict
	return a, item
}

// financeInputs assembles the model inputs from the estimate suite. The
// insurer's quoted premium replaces the configured flat insurance when one
// came back.
func (o *Orchestrator) financeInputs(l model.Listing, a *model.Analysis) finance.Inputs {
	annualInsurance := o.cfg.Flip.AnnualInsurance
	if a.Insurance != nil && a.Insurance.Insurable && a.Insurance.AnnualPremium > 0 {
		annualInsurance = a.Insurance.AnnualPremium
	}
	return finance.Inputs{
		PurchasePrice:   l.EffectivePrice(),
		RenovationCost:  a.Renovation.Total,
		ARV:             a.ARV.Value,
		TimelineWeeks:   a.Timeline.Weeks,
		AnnualRates:     a.Council.AnnualRates,
		AnnualInsurance: annualInsurance,
		WeeklyRent:      a.RentalIncome.WeeklyRent,
	}
}

func (o *Orchestrator) fail(ctx context.Context, l model.Listing, item model.BatchItem, err error) model.BatchItem {
	zap.L().Error("pipeline: listing failed",
		zap.String("listing", l.ID),
		zap.Error(err),
	)
	o.setStatus(ctx, l.ID, l.FilterStatus, model.AnalysisStatusFailed, err.Error())
	item.Outcome = model.OutcomeFailed
	item.Reason = err.Error()
	return item
}

// setStatus is best-effort; a status write failure must not mask the result
// of the stage that preceded it.
func (o *Orchestrator) setStatus(ctx context.Context, id string, fs model.FilterStatus, as model.AnalysisStatus, reason string) {
	if err := o.store.UpdateListingStatus(ctx, id, fs, as, reason); err != nil {
		zap.L().Warn("pipeline: status update failed",
			zap.String("listing", id),
			zap.Error(err),
		)
	}
}

// validate rejects structurally unusable input before any external call is
// spent on it. These are permanent conditions; retrying cannot fix them.
func validate(l model.Listing) error {
	if strings.TrimSpace(l.ID) == "" {
		return resilience.NewInputError("id", "missing")
	}
	if strings.TrimSpace(l.Address) == "" && strings.TrimSpace(l.FullAddress) == "" {
		return resilience.NewInputError("address", "missing")
	}
	if strings.TrimSpace(l.Region) == "" {
		return resilience.NewInputError("region", "missing")
	}
	if l.EffectivePrice() < 0 {
		return resilience.NewInputError("asking_price", fmt.Sprintf("negative price %.0f", l.AskingPrice))
	}
	if l.Bedrooms < 0 || l.Bedrooms > 20 {
		return resilience.NewInputError("bedrooms", fmt.Sprintf("implausible count %d", l.Bedrooms))
	}
	return nil
}
