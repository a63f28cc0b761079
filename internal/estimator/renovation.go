package estimator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Renovation costs the renovation scope from the condition estimate.
type Renovation struct {
	cfg config.RenoConfig
}

func NewRenovation(cfg config.RenoConfig) *Renovation {
	return &Renovation{cfg: cfg}
}

// Estimate produces the costed scope. In direct mode the provider's own cost
// figure is trusted when present; otherwise the rule tables apply.
func (r *Renovation) Estimate(l model.Listing, cond *model.ConditionEstimate) *model.RenovationEstimate {
	if r.cfg.Mode == "direct" && cond.HasDirect() {
		return &model.RenovationEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			Level:         cond.Level,
			Total:         cond.DirectCost,
			KeyItems:      cond.KeyItems,
			Source:        model.SourceExternal,
		}
	}

	floor := floorAreaFor(l, r.cfg.FloorAreaByBed)
	perSqm := r.cfg.CostPerSqm[string(cond.Level)]
	base := floor * perSqm

	addOn, details := r.addOns(floor, cond)
	if credit := r.healthyHomesCredit(addOn, cond.HealthyHomes); credit > 0 {
		addOn -= credit
		details = append(details, fmt.Sprintf("healthy homes credit -$%.0f (%d signals)", credit, len(cond.HealthyHomes)))
	}
	contingency := (base + addOn) * r.cfg.ContingencyPct

	return &model.RenovationEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		Level:         cond.Level,
		FloorAreaUsed: floor,
		CostPerSqm:    perSqm,
		BaseCost:      base,
		AddOnCost:     addOn,
		AddOnDetails:  details,
		Contingency:   contingency,
		Total:         base + addOn + contingency,
		KeyItems:      cond.KeyItems,
		Source:        model.SourceRuleBased,
	}
}

func (r *Renovation) addOns(floor float64, cond *model.ConditionEstimate) (float64, []string) {
	var total float64
	var details []string

	if cond.RoofReplace {
		cost := floor * r.cfg.RoofAreaFactor * r.cfg.RoofCostPerSqm
		total += cost
		details = append(details, fmt.Sprintf("roof replacement $%.0f", cost))
	}

	for _, concern := range cond.StructuralConcerns {
		c := strings.ToLower(concern)
		switch {
		case strings.Contains(c, "weatherboard") || strings.Contains(c, "cladding"):
			total += r.cfg.WeatherboardCost
			details = append(details, fmt.Sprintf("cladding repair $%.0f", r.cfg.WeatherboardCost))
		case strings.Contains(c, "foundation") || strings.Contains(c, "pile"):
			total += r.cfg.FoundationCost
			details = append(details, fmt.Sprintf("foundation work $%.0f", r.cfg.FoundationCost))
		case strings.Contains(c, "moisture") || strings.Contains(c, "damp") || strings.Contains(c, "mould"):
			total += r.cfg.MoistureCost
			details = append(details, fmt.Sprintf("moisture remediation $%.0f", r.cfg.MoistureCost))
		}
	}

	return total, details
}

// healthyHomesCredit discounts add-on work for compliance items the seller
// already claims in the description. Capped at the add-on total; the base
// scope is never discounted.
func (r *Renovation) healthyHomesCredit(addOn float64, signals []string) float64 {
	credit := float64(len(signals)) * r.cfg.HealthyHomesCredit
	if credit > addOn {
		credit = addOn
	}
	return credit
}

// floorAreaFor returns the listing's floor area, falling back to the typical
// area for its bedroom count when unknown.
func floorAreaFor(l model.Listing, byBed map[string]float64) float64 {
	if l.FloorArea > 0 {
		return l.FloorArea
	}
	beds := l.Bedrooms
	if beds < 1 {
		beds = 3
	}
	if beds > 6 {
		beds = 6
	}
	if area, ok := byBed[strconv.Itoa(beds)]; ok {
		return area
	}
	return 110
}
