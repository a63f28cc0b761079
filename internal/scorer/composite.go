// Package scorer computes the weighted composite score and verdict that
// rank analyzed listings against each other.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Scorer derives the 0-100 composite from the six component scores.
type Scorer struct {
	cfg config.ScoringConfig
}

func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the composite for a completed analysis. The analysis must
// already carry a decision; the component scores read across every estimate.
func (s *Scorer) Score(a *model.Analysis) *model.CompositeScore {
	components := model.ComponentScores{
		ROI:          round1(s.roiScore(a)),
		Timeline:     round1(s.timelineScore(a)),
		Confidence:   round1(s.confidenceScore(a)),
		Subdivision:  round1(s.subdivisionScore(a)),
		Location:     round1(s.locationScore(a)),
		Insurability: round1(s.insurabilityScore(a)),
	}

	w := s.cfg.Weights
	composite := components.ROI*w.ROI +
		components.Timeline*w.Timeline +
		components.Confidence*w.Confidence +
		components.Subdivision*w.Subdivision +
		components.Location*w.Location +
		components.Insurability*w.Insurability
	composite = round1(composite)

	return &model.CompositeScore{
		Score:           composite,
		Components:      components,
		Weights:         w.Map(),
		Verdict:         s.verdict(composite, a),
		Flags:           s.flags(a, components),
		NextSteps:       s.nextSteps(s.verdict(composite, a), a),
		ConfidenceLevel: s.confidenceLevel(components.Confidence),
	}
}

// roiScore scores the recommended strategy's return against its reference
// point. When the decision is PASS, the better of the two is scored so near
// misses still rank above clear losers.
func (s *Scorer) roiScore(a *model.Analysis) float64 {
	recommended := ""
	if a.Decision != nil {
		recommended = a.Decision.Recommended
	}
	flipScore := func() float64 {
		if a.Flip == nil {
			return 0
		}
		return math.Min(100, a.Flip.ROI/s.cfg.ROIRefFlip*100)
	}
	rentalScore := func() float64 {
		if a.Rental == nil {
			return 0
		}
		return math.Min(100, a.Rental.GrossYield/s.cfg.ROIRefRental*100)
	}

	switch {
	case strings.Contains(recommended, "FLIP"):
		return flipScore()
	case strings.Contains(recommended, "RENTAL"):
		return rentalScore()
	default:
		return math.Max(flipScore(), rentalScore())
	}
}

// timelineScore is 100 up to the full-score window, then loses slope1 points
// per week to the knee and slope2 past it.
func (s *Scorer) timelineScore(a *model.Analysis) float64 {
	weeks := s.cfg.TimelineFull
	if a.Timeline != nil {
		weeks = a.Timeline.Weeks
	}
	switch {
	case weeks <= s.cfg.TimelineFull:
		return 100
	case weeks <= s.cfg.TimelineKnee:
		return 100 - float64(weeks-s.cfg.TimelineFull)*s.cfg.TimelineSlope1
	default:
		kneeScore := 100 - float64(s.cfg.TimelineKnee-s.cfg.TimelineFull)*s.cfg.TimelineSlope1
		return math.Max(0, kneeScore-float64(weeks-s.cfg.TimelineKnee)*s.cfg.TimelineSlope2)
	}
}

func (s *Scorer) confidenceScore(a *model.Analysis) float64 {
	arvConfidence := 50.0
	if a.ARV != nil {
		arvConfidence = a.ARV.Confidence
	}
	samples := 0
	if a.RentalIncome != nil {
		samples = a.RentalIncome.BondSamples
	}
	return (arvConfidence + math.Min(100, float64(samples)*s.cfg.BondSampleMul)) / 2
}

func (s *Scorer) subdivisionScore(a *model.Analysis) float64 {
	if a.Subdivision == nil || !a.Subdivision.Potential {
		return 0
	}
	return math.Min(100, a.Subdivision.NetValueAdd/s.cfg.SubdivisionRef*100)
}

func (s *Scorer) locationScore(a *model.Analysis) float64 {
	growth := a.ProjectedGrowth
	if growth == 0 {
		growth = 0.02
	}
	return math.Min(100, math.Max(0, (growth+s.cfg.GrowthOffset)*s.cfg.GrowthSlope))
}

func (s *Scorer) insurabilityScore(a *model.Analysis) float64 {
	if a.Insurance == nil {
		return 100 - 2000/s.cfg.PremiumDivisor
	}
	if !a.Insurance.Insurable {
		return 0
	}
	premium := a.Insurance.AnnualPremium
	if premium <= 0 {
		premium = 2000
	}
	return math.Max(0, 100-premium/s.cfg.PremiumDivisor)
}

// verdict maps the composite to a tier. A PASS decision with a weak
// composite is always a PASS verdict regardless of tier.
func (s *Scorer) verdict(composite float64, a *model.Analysis) model.Verdict {
	recommended := ""
	if a.Decision != nil {
		recommended = a.Decision.Recommended
	}
	if recommended == string(model.StrategyPass) && composite < s.cfg.MediumConfidenceCut {
		return model.VerdictPass
	}
	switch {
	case composite >= s.cfg.StrongBuyCut:
		return model.VerdictStrongBuy
	case composite >= s.cfg.BuyCut:
		return model.VerdictBuy
	case composite >= s.cfg.MaybeCut:
		return model.VerdictMaybe
	default:
		return model.VerdictPass
	}
}

func (s *Scorer) flags(a *model.Analysis, components model.ComponentScores) []string {
	var flags []string

	if a.Timeline != nil && a.Timeline.Weeks > s.cfg.TimelineFull {
		flags = append(flags, fmt.Sprintf("timeline exceeds %d week target (%d weeks)", s.cfg.TimelineFull, a.Timeline.Weeks))
	}
	if components.Confidence < s.cfg.MediumConfidenceCut {
		flags = append(flags, "low confidence, limited comparable data")
	}
	if a.ARV != nil && a.ARV.ComparablesUsed > 0 && a.ARV.ComparablesUsed < 3 {
		flags = append(flags, fmt.Sprintf("limited comparable sales (only %d in area)", a.ARV.ComparablesUsed))
	}
	if a.Insurance != nil {
		if !a.Insurance.Insurable {
			flags = append(flags, "property may be uninsurable")
		} else if a.Insurance.AnnualPremium > s.cfg.HighPremiumFlag {
			flags = append(flags, fmt.Sprintf("high insurance premium ($%.0f/year)", a.Insurance.AnnualPremium))
		}
	}
	if a.Condition != nil {
		if len(a.Condition.StructuralConcerns) > 0 {
			top := a.Condition.StructuralConcerns
			if len(top) > 3 {
				top = top[:3]
			}
			flags = append(flags, "structural concerns detected: "+strings.Join(top, ", "))
		}
		if a.Condition.Level == model.RenoMajor || a.Condition.Level == model.RenoFullGut {
			flags = append(flags, fmt.Sprintf("significant renovation required (%s)", a.Condition.Level))
		}
	}

	return flags
}

func (s *Scorer) nextSteps(verdict model.Verdict, a *model.Analysis) []string {
	switch verdict {
	case model.VerdictStrongBuy, model.VerdictBuy:
		steps := []string{
			"request building report",
			"get property manager rental appraisal",
			"view property in person",
		}
		if a.Subdivision != nil && a.Subdivision.Potential {
			steps = append(steps, "check council for subdivision feasibility")
		}
		if a.ARV != nil && a.ARV.Confidence < 50 {
			steps = append(steps, "get independent valuation")
		}
		steps = append(steps, "review title and LIM report", "prepare offer strategy")
		return steps
	case model.VerdictMaybe:
		return []string{
			"monitor listing for price reduction",
			"view property if time permits",
			"research area further",
		}
	default:
		return []string{"skip, does not meet investment criteria"}
	}
}

func (s *Scorer) confidenceLevel(confidence float64) string {
	switch {
	case confidence >= s.cfg.HighConfidenceCut:
		return "HIGH"
	case confidence >= s.cfg.MediumConfidenceCut:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Rank orders analyses by composite score descending and assigns dense
// 1-based ranks. Analyses without a score sort last.
func Rank(analyses []*model.Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		return scoreOf(analyses[i]) > scoreOf(analyses[j])
	})
	for i, a := range analyses {
		a.Rank = i + 1
	}
}

func scoreOf(a *model.Analysis) float64 {
	if a.Score == nil {
		return -1
	}
	return a.Score.Score
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
