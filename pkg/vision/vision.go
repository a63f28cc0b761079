// Package vision assesses property condition from listing photos. The
// primary implementation calls the Anthropic API; a static heuristic client
// serves offline runs and tests.
package vision

import "context"

// Request carries the photos and context for one condition assessment.
type Request struct {
	PhotoURLs   []string
	Address     string
	Description string
}

// Report is the provider's condition assessment. Level is one of NONE,
// COSMETIC, MODERATE, MAJOR, FULL_GUT.
type Report struct {
	Level              string   `json:"overall_reno_level"`
	RoofCondition      string   `json:"roof_condition"` // "OK" or "NEEDS_REPLACE"
	StructuralConcerns []string `json:"structural_concerns"`
	KeyItems           []string `json:"key_renovation_items"`
	Confidence         float64  `json:"confidence"`

	// Direct cost/timeline estimates. Providers that only grade condition
	// leave these zero and the rule-based estimators take over.
	EstimatedCost  float64 `json:"estimated_renovation_cost"`
	EstimatedWeeks int     `json:"estimated_timeline_weeks"`
}

// Client assesses property condition from photos.
type Client interface {
	Assess(ctx context.Context, req Request) (*Report, error)
}
