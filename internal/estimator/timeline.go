package estimator

import (
	"fmt"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/model"
)

// Timeline derives the renovation duration from the costed scope.
type Timeline struct {
	cfg config.RenoConfig
}

func NewTimeline(cfg config.RenoConfig) *Timeline {
	return &Timeline{cfg: cfg}
}

// Estimate maps the renovation level to a base duration and stretches it for
// heavy add-on work.
func (t *Timeline) Estimate(cond *model.ConditionEstimate, reno *model.RenovationEstimate) *model.TimelineEstimate {
	if t.cfg.Mode == "direct" && cond.HasDirect() {
		return &model.TimelineEstimate{
			SchemaVersion: model.EstimateSchemaVersion,
			Weeks:         cond.DirectWeeks,
			WithinTarget:  cond.DirectWeeks <= t.cfg.TargetWeeks,
			Level:         cond.Level,
			Source:        model.SourceExternal,
		}
	}

	weeks := t.cfg.WeeksPerLevel[string(cond.Level)]
	notes := ""
	if reno.AddOnCost > t.cfg.AddOnWeekThreshold {
		weeks += 2
		notes = "extended for add-on work"
	}
	if reno.AddOnCost > t.cfg.AddOnWeekThreshold2 {
		weeks += 2
		notes = fmt.Sprintf("extended for heavy add-on work ($%.0f)", reno.AddOnCost)
	}

	return &model.TimelineEstimate{
		SchemaVersion: model.EstimateSchemaVersion,
		Weeks:         weeks,
		WithinTarget:  weeks <= t.cfg.TargetWeeks,
		Level:         cond.Level,
		Notes:         notes,
		Source:        model.SourceRuleBased,
	}
}
