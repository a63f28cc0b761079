package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisConsistent_Empty(t *testing.T) {
	assert.True(t, Analysis{}.Consistent())
}

func TestAnalysisConsistent_DecisionWithoutScenarios(t *testing.T) {
	a := Analysis{Decision: &StrategyDecision{Recommended: "FLIP"}}
	assert.False(t, a.Consistent())

	a.Flip = &FinancialScenario{Strategy: StrategyFlip}
	assert.False(t, a.Consistent(), "one scenario is not enough")

	a.Rental = &FinancialScenario{Strategy: StrategyRental}
	assert.True(t, a.Consistent())
}

func TestAnalysisConsistent_ScoreWithoutDecision(t *testing.T) {
	a := Analysis{Score: &CompositeScore{Score: 50}}
	assert.False(t, a.Consistent())
}

func TestEffectivePrice(t *testing.T) {
	assert.Equal(t, 450000.0, Listing{AskingPrice: 450000, CapitalValue: 400000}.EffectivePrice())
	assert.Equal(t, 400000.0, Listing{CapitalValue: 400000}.EffectivePrice())
	assert.Equal(t, 0.0, Listing{}.EffectivePrice())
}

func TestConditionEstimate_HasDirect(t *testing.T) {
	assert.False(t, ConditionEstimate{}.HasDirect())
	assert.False(t, ConditionEstimate{DirectCost: 50000}.HasDirect())
	assert.True(t, ConditionEstimate{DirectCost: 50000, DirectWeeks: 6}.HasDirect())
}
