package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReport_Clean(t *testing.T) {
	report, err := ParseReport(`{"overall_reno_level":"MAJOR","roof_condition":"NEEDS_REPLACE","structural_concerns":["weatherboard rot"],"key_renovation_items":["full kitchen replacement"],"confidence":0.8,"estimated_renovation_cost":85000,"estimated_timeline_weeks":12}`)
	require.NoError(t, err)
	assert.Equal(t, "MAJOR", report.Level)
	assert.Equal(t, "NEEDS_REPLACE", report.RoofCondition)
	assert.Equal(t, 85_000.0, report.EstimatedCost)
	assert.Equal(t, 12, report.EstimatedWeeks)
}

func TestParseReport_Fenced(t *testing.T) {
	report, err := ParseReport("Here is the assessment:\n```json\n{\"overall_reno_level\": \"cosmetic\", \"confidence\": 0.9}\n```")
	require.NoError(t, err)
	assert.Equal(t, "COSMETIC", report.Level)
}

func TestParseReport_UnknownLevelDefaults(t *testing.T) {
	report, err := ParseReport(`{"overall_reno_level":"SPARKLING"}`)
	require.NoError(t, err)
	assert.Equal(t, "MODERATE", report.Level)
	assert.Equal(t, 0.5, report.Confidence)
}

func TestParseReport_NoJSON(t *testing.T) {
	_, err := ParseReport("I cannot assess these photos.")
	assert.Error(t, err)
}

func TestStatic_LevelsFromDescription(t *testing.T) {
	s := NewStatic()

	report, err := s.Assess(context.Background(), Request{Description: "A renovator's dream on a big section"})
	require.NoError(t, err)
	assert.Equal(t, "FULL_GUT", report.Level)

	report, err = s.Assess(context.Background(), Request{Description: "Needs work but solid bones"})
	require.NoError(t, err)
	assert.Equal(t, "MAJOR", report.Level)

	report, err = s.Assess(context.Background(), Request{Description: "Immaculate family home"})
	require.NoError(t, err)
	assert.Equal(t, "COSMETIC", report.Level)

	report, err = s.Assess(context.Background(), Request{Description: "Three bedroom house"})
	require.NoError(t, err)
	assert.Equal(t, "MODERATE", report.Level)
}

func TestStatic_ConcernsAndRoof(t *testing.T) {
	s := NewStatic()
	report, err := s.Assess(context.Background(), Request{
		Description: "Roof needs replacing, some weatherboard rot and moisture in back room",
	})
	require.NoError(t, err)
	assert.Equal(t, "NEEDS_REPLACE", report.RoofCondition)
	assert.Contains(t, report.StructuralConcerns, "weatherboard rot")
	assert.Contains(t, report.StructuralConcerns, "moisture damage")
}
