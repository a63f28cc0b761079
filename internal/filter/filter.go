// Package filter implements the Stage 1 listing filters: an ordered table of
// hard rules that can reject outright, plus a soft demand-profile annotation
// that never rejects.
package filter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
)

// Rule is one hard filter. Apply returns the verdict and a reason when
// rejecting. Rules are independent predicates; the table order only decides
// which reason wins when several would reject.
type Rule struct {
	Name  string
	Apply func(ctx context.Context, l model.Listing) (model.FilterVerdict, string)
}

// Stage evaluates the hard rule table and the demand profile for listings.
type Stage struct {
	rules []Rule
	cfg   config.FilterConfig
}

// New builds the filter stage. Demographic figures come from the collaborator
// on every evaluation; any caching belongs to that client, not this stage.
func New(cfg config.FilterConfig, demo lookup.Demographics) *Stage {
	return &Stage{
		cfg: cfg,
		rules: []Rule{
			{Name: "price_ceiling", Apply: priceRule(cfg.MaxPrice)},
			{Name: "title_type", Apply: titleRule(cfg.RejectedTitles)},
			{Name: "population_growth", Apply: populationRule(cfg.MinPopulation, demo)},
		},
	}
}

// Evaluate runs the hard rules in order, short-circuiting on the first
// rejection, and returns one FilterResult per rule evaluated.
func (s *Stage) Evaluate(ctx context.Context, l model.Listing) []model.FilterResult {
	var results []model.FilterResult
	for _, rule := range s.rules {
		verdict, reason := rule.Apply(ctx, l)
		results = append(results, model.FilterResult{
			Rule:    rule.Name,
			Verdict: verdict,
			Reason:  reason,
		})
		if verdict == model.FilterReject {
			zap.L().Info("filter: rejected",
				zap.String("listing", l.ID),
				zap.String("rule", rule.Name),
				zap.String("reason", reason),
			)
			break
		}
	}
	return results
}

// Rejected reports whether any rule in a result set rejected, with the reason.
func Rejected(results []model.FilterResult) (bool, string) {
	for _, r := range results {
		if r.Verdict == model.FilterReject {
			return true, r.Reason
		}
	}
	return false, ""
}

func priceRule(maxPrice float64) func(context.Context, model.Listing) (model.FilterVerdict, string) {
	return func(_ context.Context, l model.Listing) (model.FilterVerdict, string) {
		price := l.EffectivePrice()
		if price <= 0 {
			// No parseable price: let it through for manual review.
			return model.FilterPass, ""
		}
		if price > maxPrice {
			return model.FilterReject, fmt.Sprintf("over budget: $%.0f > $%.0f", price, maxPrice)
		}
		return model.FilterPass, ""
	}
}

func titleRule(rejected []string) func(context.Context, model.Listing) (model.FilterVerdict, string) {
	return func(_ context.Context, l model.Listing) (model.FilterVerdict, string) {
		titleType := strings.ToLower(strings.TrimSpace(l.TitleType))

		if titleType == "" {
			// No explicit title type: scan title and description for mentions.
			combined := strings.ToLower(l.Title + " " + l.Description)
			for _, bad := range rejected {
				if strings.Contains(combined, strings.ToLower(bad)) {
					return model.FilterReject, "title type detected in description: " + bad
				}
			}
			return model.FilterPass, ""
		}

		for _, bad := range rejected {
			if strings.Contains(titleType, strings.ToLower(bad)) {
				return model.FilterReject, "rejected title type: " + titleType
			}
		}
		return model.FilterPass, ""
	}
}

func populationRule(minPopulation int, demo lookup.Demographics) func(context.Context, model.Listing) (model.FilterVerdict, string) {
	return func(ctx context.Context, l model.Listing) (model.FilterVerdict, string) {
		data, err := demo.Lookup(ctx, l.District, l.Region)
		if err != nil {
			// Unknown area: pass for manual review rather than reject on
			// missing data.
			zap.L().Warn("filter: demographic data unavailable",
				zap.String("listing", l.ID),
				zap.String("district", l.District),
				zap.Error(err),
			)
			return model.FilterPass, ""
		}

		if data.Population < minPopulation && data.HistoricalGrowth < 0 && data.ProjectedGrowth < 0 {
			return model.FilterReject, fmt.Sprintf(
				"population %d below %d with declining growth (%s)",
				data.Population, minPopulation, l.District,
			)
		}
		return model.FilterPass, ""
	}
}
