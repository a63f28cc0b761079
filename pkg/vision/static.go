package vision

import (
	"context"
	"strings"
)

// keyword buckets for the description-driven heuristic, checked in order of
// severity.
var (
	fullGutWords  = []string{"do-up", "renovator's dream", "needs total", "derelict", "uninhabitable", "full renovation"}
	majorWords    = []string{"needs work", "handyman", "tlc", "original condition", "deferred maintenance", "as is where is"}
	cosmeticWords = []string{"tidy", "well presented", "immaculate", "renovated", "refurbished", "modernised"}
	roofWords     = []string{"roof needs", "new roof required", "roof replacement"}
	concernWords  = map[string]string{
		"weatherboard rot": "weatherboard rot",
		"borer":            "borer damage",
		"foundation":       "foundation issues",
		"subsidence":       "foundation issues",
		"moisture":         "moisture damage",
		"leak":             "moisture damage",
	}
)

// Static grades condition from the listing description alone, with no
// external call. It is deliberately conservative: an unrevealing description
// lands on MODERATE.
type Static struct{}

// NewStatic creates the heuristic client.
func NewStatic() Client {
	return &Static{}
}

func (s *Static) Assess(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	desc := strings.ToLower(req.Description)

	level := "MODERATE"
	confidence := 0.3
	switch {
	case containsAny(desc, fullGutWords):
		level = "FULL_GUT"
		confidence = 0.5
	case containsAny(desc, majorWords):
		level = "MAJOR"
		confidence = 0.5
	case containsAny(desc, cosmeticWords):
		level = "COSMETIC"
		confidence = 0.5
	}

	report := &Report{
		Level:         level,
		RoofCondition: "OK",
		Confidence:    confidence,
	}
	if containsAny(desc, roofWords) {
		report.RoofCondition = "NEEDS_REPLACE"
	}

	seen := map[string]bool{}
	for keyword, concern := range concernWords {
		if strings.Contains(desc, keyword) && !seen[concern] {
			report.StructuralConcerns = append(report.StructuralConcerns, concern)
			seen[concern] = true
		}
	}

	return report, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
