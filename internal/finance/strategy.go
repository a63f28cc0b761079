package finance

import (
	"fmt"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Decide picks between the flip and rental scenarios with a fixed, ordered
// rule table. Subdivision never changes the base strategy; a positive net
// value add only appends the suffix.
func Decide(flip, rental *model.FinancialScenario, subdiv *model.SubdivisionEstimate, cfg config.StrategyConfig) *model.StrategyDecision {
	flipROI := flip.ROI
	rentalYield := rental.GrossYield

	var recommended model.Strategy
	var reason string

	switch {
	case flipROI >= cfg.FlipROITarget && rentalYield >= cfg.RentalYieldTarget:
		// Both viable. Flip must clearly outrun the safer strategy.
		if flipROI > rentalYield*cfg.FlipPreference {
			recommended = model.StrategyFlip
			reason = fmt.Sprintf("higher ROI: %.1f%% vs %.1f%% yield", flipROI, rentalYield)
		} else {
			recommended = model.StrategyRental
			reason = fmt.Sprintf("good rental yield %.1f%% with lower risk", rentalYield)
		}
	case flipROI >= cfg.FlipROITarget:
		recommended = model.StrategyFlip
		reason = fmt.Sprintf("ROI %.1f%% meets target, yield %.1f%% below %.1f%%",
			flipROI, rentalYield, cfg.RentalYieldTarget)
	case rentalYield >= cfg.RentalYieldTarget:
		recommended = model.StrategyRental
		reason = fmt.Sprintf("rental yield %.1f%% meets target; flip ROI %.1f%% below %.1f%%",
			rentalYield, flipROI, cfg.FlipROITarget)
	default:
		recommended = model.StrategyPass
		reason = fmt.Sprintf("neither strategy meets targets (flip %.1f%% < %.1f%%, rental %.1f%% < %.1f%%)",
			flipROI, cfg.FlipROITarget, rentalYield, cfg.RentalYieldTarget)
	}

	label := string(recommended)
	var bonus float64
	if subdiv != nil && subdiv.Potential && subdiv.NetValueAdd > 0 {
		bonus = subdiv.NetValueAdd
		label += "_WITH_SUBDIVISION"
		reason += fmt.Sprintf(" | subdivision adds ~$%.0f", bonus)
	}

	return &model.StrategyDecision{
		Recommended:      label,
		Reason:           reason,
		FlipROI:          round2(flipROI),
		RentalYield:      round2(rentalYield),
		SubdivisionBonus: bonus,
		Risks:            riskNotes(flipROI, rentalYield, flip.TimelineWeeks),
	}
}

func riskNotes(flipROI, rentalYield float64, timelineWeeks int) []string {
	var risks []string
	if timelineWeeks > 12 {
		risks = append(risks, "extended renovation timeline increases holding costs")
	}
	if flipROI > 0 && flipROI < 20 {
		risks = append(risks, "moderate flip ROI leaves less margin for unexpected costs")
	}
	if rentalYield > 0 && rentalYield < 8 {
		risks = append(risks, "rental yield below ideal for strong cash flow")
	}
	if len(risks) == 0 {
		risks = []string{"low risk, strong fundamentals"}
	}
	return risks
}
