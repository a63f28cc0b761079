package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/finance"
	"github.com/harbourstone/dealscout/internal/model"
)

// Adjustments override selected financial inputs for a what-if run. Zero
// values mean "keep the estimated figure".
type Adjustments struct {
	PurchasePrice    float64 `json:"purchase_price,omitempty"`
	RenovationCost   float64 `json:"renovation_cost,omitempty"`
	ARV              float64 `json:"arv,omitempty"`
	WeeklyRent       float64 `json:"weekly_rent,omitempty"`
	TimelineWeeks    int     `json:"timeline_weeks,omitempty"`
	FlipInterestRate float64 `json:"flip_interest_rate,omitempty"`
	HoldInterestRate float64 `json:"hold_interest_rate,omitempty"`
}

// ScenarioResult is the recomputed financial picture under the adjustments.
// It is never persisted; the stored analysis keeps the estimated figures.
type ScenarioResult struct {
	ListingID   string                   `json:"listing_id"`
	Adjustments Adjustments              `json:"adjustments"`
	Inputs      finance.Inputs           `json:"inputs"`
	Flip        *model.FinancialScenario `json:"flip"`
	Rental      *model.FinancialScenario `json:"rental"`
	Decision    *model.StrategyDecision  `json:"decision"`
}

// Scenario reruns the flip and rental models for a listing with the given
// overrides, reusing every stored estimate. The listing needs a completed
// analysis first; estimators are never re-invoked here.
func (o *Orchestrator) Scenario(ctx context.Context, listingID string, adj Adjustments) (*ScenarioResult, error) {
	l, err := o.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	a, err := o.store.GetAnalysis(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.Renovation == nil || a.ARV == nil || a.Timeline == nil ||
		a.Council == nil || a.RentalIncome == nil {
		return nil, eris.Errorf("pipeline: no completed analysis for %s", listingID)
	}

	in := o.financeInputs(*l, a)
	if adj.PurchasePrice > 0 {
		in.PurchasePrice = adj.PurchasePrice
	}
	if adj.RenovationCost > 0 {
		in.RenovationCost = adj.RenovationCost
	}
	if adj.ARV > 0 {
		in.ARV = adj.ARV
	}
	if adj.WeeklyRent > 0 {
		in.WeeklyRent = adj.WeeklyRent
	}
	if adj.TimelineWeeks > 0 {
		in.TimelineWeeks = adj.TimelineWeeks
	}

	flipCfg := o.cfg.Flip
	if adj.FlipInterestRate > 0 {
		flipCfg.InterestRate = adj.FlipInterestRate
	}
	holdCfg := o.cfg.Hold
	if adj.HoldInterestRate > 0 {
		holdCfg.InterestRate = adj.HoldInterestRate
	}

	res := &ScenarioResult{
		ListingID:   listingID,
		Adjustments: adj,
		Inputs:      in,
	}
	res.Flip = finance.Flip(in, flipCfg, o.cfg.Strategy.FlipROITarget)
	res.Rental = finance.Rental(in, holdCfg, o.cfg.Strategy.RentalYieldTarget)
	res.Decision = finance.Decide(res.Flip, res.Rental, a.Subdivision, o.cfg.Strategy)

	zap.L().Info("pipeline: scenario computed",
		zap.String("listing", listingID),
		zap.Float64("flip_roi", res.Decision.FlipROI),
		zap.Float64("rental_yield", res.Decision.RentalYield),
		zap.String("recommended", res.Decision.Recommended),
	)
	return res, nil
}
