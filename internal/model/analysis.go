package model

import "time"

// EstimateSchemaVersion is bumped whenever the shape of any stored estimate
// changes, so prior analyses can be detected as stale on load.
const EstimateSchemaVersion = 2

// Source tags where an estimate's value came from.
type Source string

const (
	SourceExternal  Source = "external"   // live lookup against a collaborator
	SourceRuleBased Source = "rule-based" // computed from configured tables
	SourceFallback  Source = "fallback"   // conservative default, data unavailable
)

// FilterVerdict is the outcome of one hard filter rule.
type FilterVerdict string

const (
	FilterPass   FilterVerdict = "PASS"
	FilterReject FilterVerdict = "REJECT"
)

// FilterResult is the outcome of a single Stage 1 rule for a listing.
type FilterResult struct {
	Rule    string        `json:"rule"`
	Verdict FilterVerdict `json:"verdict"`
	Reason  string        `json:"reason,omitempty"`
}

// DemandProfile is the soft-filter annotation: it never rejects, it only
// records demand context used later by scoring and reporting.
type DemandProfile struct {
	StudentTown    bool     `json:"student_town"`
	FamilyArea     bool     `json:"family_area"`
	RetirementArea bool     `json:"retirement_area"`
	BedroomMatch   bool     `json:"bedroom_match"`
	Notes          []string `json:"notes,omitempty"`
}

// RenoLevel is the qualitative renovation grade from the condition estimator.
type RenoLevel string

const (
	RenoNone     RenoLevel = "NONE"
	RenoCosmetic RenoLevel = "COSMETIC"
	RenoModerate RenoLevel = "MODERATE"
	RenoMajor    RenoLevel = "MAJOR"
	RenoFullGut  RenoLevel = "FULL_GUT"
)

// ConditionEstimate is the vision-assessed property condition. Fingerprint is
// the stable hash of the ordered photo set that produced it; an unchanged
// fingerprint means the external call can be skipped entirely.
type ConditionEstimate struct {
	SchemaVersion      int       `json:"schema_version"`
	Level              RenoLevel `json:"level"`
	RoofReplace        bool      `json:"roof_replace"`
	StructuralConcerns []string  `json:"structural_concerns,omitempty"`
	KeyItems           []string  `json:"key_items,omitempty"`
	HealthyHomes       []string  `json:"healthy_homes,omitempty"` // seller-claimed compliance signals from the description

	// Populated only in direct mode, where the vision provider returns cost
	// and timeline itself and the rule-based estimators are skipped.
	DirectCost  float64 `json:"direct_cost,omitempty"`
	DirectWeeks int     `json:"direct_weeks,omitempty"`

	Confidence  float64 `json:"confidence"`
	Source      Source  `json:"source"`
	Fingerprint string  `json:"fingerprint"`
}

// HasDirect reports whether the provider supplied usable direct cost and
// timeline figures.
func (c ConditionEstimate) HasDirect() bool {
	return c.DirectCost > 0 && c.DirectWeeks > 0
}

// RenovationEstimate is the costed renovation scope.
type RenovationEstimate struct {
	SchemaVersion int       `json:"schema_version"`
	Level         RenoLevel `json:"level"`
	FloorAreaUsed float64   `json:"floor_area_used"`
	CostPerSqm    float64   `json:"cost_per_sqm"`
	BaseCost      float64   `json:"base_cost"`
	AddOnCost     float64   `json:"add_on_cost"`
	AddOnDetails  []string  `json:"add_on_details,omitempty"`
	Contingency   float64   `json:"contingency"`
	Total         float64   `json:"total"`
	KeyItems      []string  `json:"key_items,omitempty"`
	Source        Source    `json:"source"`
}

// TimelineEstimate is the renovation duration estimate.
type TimelineEstimate struct {
	SchemaVersion int       `json:"schema_version"`
	Weeks         int       `json:"weeks"`
	WithinTarget  bool      `json:"within_target"`
	Level         RenoLevel `json:"level"`
	Notes         string    `json:"notes,omitempty"`
	Source        Source    `json:"source"`
}

// ARVEstimate is the after-repair value estimate.
type ARVEstimate struct {
	SchemaVersion   int     `json:"schema_version"`
	Value           float64 `json:"value"`
	PricePerSqm     float64 `json:"price_per_sqm,omitempty"`
	ComparablesUsed int     `json:"comparables_used"`
	SearchWidened   bool    `json:"search_widened"`
	Adjustments     float64 `json:"adjustments"`
	Confidence      float64 `json:"confidence"` // 0-100
	Source          Source  `json:"source"`
	Comparables     []Sale  `json:"comparables,omitempty"`
}

// RentalIncomeEstimate is the weekly rent estimate.
type RentalIncomeEstimate struct {
	SchemaVersion int     `json:"schema_version"`
	WeeklyRent    float64 `json:"weekly_rent"`
	AnnualRent    float64 `json:"annual_rent"`
	BondSamples   int     `json:"bond_samples"`
	SearchWidened bool    `json:"search_widened"`
	Source        Source  `json:"source"`
}

// CouncilEstimate carries annual rates for the property.
type CouncilEstimate struct {
	SchemaVersion int     `json:"schema_version"`
	AnnualRates   float64 `json:"annual_rates"`
	Source        Source  `json:"source"`
}

// SubdivisionEstimate is the subdivision feasibility and value-add estimate.
// Fingerprint hashes the address/district/region/land-area tuple.
type SubdivisionEstimate struct {
	SchemaVersion int     `json:"schema_version"`
	Potential     bool    `json:"potential"`
	Zoning        string  `json:"zoning,omitempty"`
	MinLotSize    float64 `json:"min_lot_size,omitempty"`
	ExtraLots     int     `json:"extra_lots"`
	Uplift        float64 `json:"uplift"`
	Costs         float64 `json:"costs"`
	NetValueAdd   float64 `json:"net_value_add"`
	Reason        string  `json:"reason,omitempty"`
	Source        Source  `json:"source"`
	Fingerprint   string  `json:"fingerprint"`
}

// InsuranceEstimate is the insurability check result.
type InsuranceEstimate struct {
	SchemaVersion int     `json:"schema_version"`
	Insurable     bool    `json:"insurable"`
	AnnualPremium float64 `json:"annual_premium"`
	Insurer       string  `json:"insurer,omitempty"`
	Note          string  `json:"note,omitempty"`
	Source        Source  `json:"source"`
}

// Strategy identifies a financial scenario.
type Strategy string

const (
	StrategyFlip   Strategy = "FLIP"
	StrategyRental Strategy = "RENTAL"
	StrategyPass   Strategy = "PASS"
)

// FinancialScenario is one fully itemized strategy model. Flip and rental
// populate different line items; shared ones keep the same meaning.
type FinancialScenario struct {
	Strategy       Strategy `json:"strategy"`
	PurchasePrice  float64  `json:"purchase_price"`
	PurchaseCosts  float64  `json:"purchase_costs"`
	RenovationCost float64  `json:"renovation_cost"`

	// Flip line items.
	SalePrice      float64 `json:"sale_price,omitempty"`
	GSTRefund      float64 `json:"gst_refund,omitempty"`
	NetRenoCost    float64 `json:"net_reno_cost,omitempty"`
	TimelineWeeks  int     `json:"timeline_weeks,omitempty"`
	TimelineMonths float64 `json:"timeline_months,omitempty"`
	InterestCost   float64 `json:"interest_cost,omitempty"`
	InsuranceCost  float64 `json:"insurance_cost,omitempty"`
	RatesCost      float64 `json:"rates_cost,omitempty"`
	Commission     float64 `json:"commission,omitempty"`
	LegalSell      float64 `json:"legal_sell,omitempty"`
	Marketing      float64 `json:"marketing,omitempty"`
	Accounting     float64 `json:"accounting,omitempty"`
	GrossProfit    float64 `json:"gross_profit,omitempty"`
	NetProfit      float64 `json:"net_profit,omitempty"`
	CashInvested   float64 `json:"cash_invested,omitempty"`
	ROI            float64 `json:"roi_percentage,omitempty"`

	// Rental line items.
	TotalInvested        float64 `json:"total_invested,omitempty"`
	WeeklyRent           float64 `json:"weekly_rent,omitempty"`
	AnnualRent           float64 `json:"annual_rent,omitempty"`
	AnnualInterest       float64 `json:"annual_interest,omitempty"`
	DeductibleInterest   float64 `json:"deductible_interest,omitempty"`
	PropertyManagement   float64 `json:"property_management,omitempty"`
	AnnualRates          float64 `json:"annual_rates,omitempty"`
	AnnualInsurance      float64 `json:"annual_insurance,omitempty"`
	Repairs              float64 `json:"repairs,omitempty"`
	NetCashSurplus       float64 `json:"net_cash_surplus,omitempty"`
	ChattelsDepreciation float64 `json:"chattels_depreciation,omitempty"`
	TaxableIncome        float64 `json:"taxable_income,omitempty"`
	TaxRefund            float64 `json:"tax_refund,omitempty"`
	AnnualCashflow       float64 `json:"annual_cashflow,omitempty"`
	GrossYield           float64 `json:"gross_yield_percentage,omitempty"`
	NetYield             float64 `json:"net_yield_percentage,omitempty"`

	InterestRate  float64 `json:"interest_rate"`
	TotalExpenses float64 `json:"total_expenses"`
	Tax           float64 `json:"tax"`

	MeetsROITarget   bool `json:"meets_roi_target"`
	MeetsYieldTarget bool `json:"meets_yield_target"`
}

// StrategyDecision is the deterministic pick between the two scenarios.
type StrategyDecision struct {
	Recommended      string   `json:"recommended"` // Strategy with optional _WITH_SUBDIVISION suffix
	Reason           string   `json:"reason"`
	FlipROI          float64  `json:"flip_roi"`
	RentalYield      float64  `json:"rental_yield"`
	SubdivisionBonus float64  `json:"subdivision_bonus"`
	Risks            []string `json:"risks,omitempty"`
}

// Verdict is the tiered label derived from the composite score.
type Verdict string

const (
	VerdictStrongBuy Verdict = "STRONG_BUY"
	VerdictBuy       Verdict = "BUY"
	VerdictMaybe     Verdict = "MAYBE"
	VerdictPass      Verdict = "PASS"
)

// ComponentScores holds the six 0-100 sub-scores behind the composite.
type ComponentScores struct {
	ROI          float64 `json:"roi"`
	Timeline     float64 `json:"timeline"`
	Confidence   float64 `json:"confidence"`
	Subdivision  float64 `json:"subdivision"`
	Location     float64 `json:"location"`
	Insurability float64 `json:"insurability"`
}

// CompositeScore is the final ranking output for one listing.
type CompositeScore struct {
	Score           float64            `json:"score"` // 0-100
	Components      ComponentScores    `json:"components"`
	Weights         map[string]float64 `json:"weights"`
	Verdict         Verdict            `json:"verdict"`
	Flags           []string           `json:"flags,omitempty"`
	NextSteps       []string           `json:"next_steps,omitempty"`
	ConfidenceLevel string             `json:"confidence_level"`
}

// Analysis is the aggregate record for one listing. It is written only by
// the orchestrator and only as a whole: a failed run leaves the prior
// Analysis untouched.
type Analysis struct {
	ListingID string `json:"listing_id"`

	FilterResults []FilterResult `json:"filter_results,omitempty"`
	Demand        *DemandProfile `json:"demand,omitempty"`

	Condition    *ConditionEstimate    `json:"condition,omitempty"`
	Renovation   *RenovationEstimate   `json:"renovation,omitempty"`
	Timeline     *TimelineEstimate     `json:"timeline,omitempty"`
	ARV          *ARVEstimate          `json:"arv,omitempty"`
	RentalIncome *RentalIncomeEstimate `json:"rental_income,omitempty"`
	Council      *CouncilEstimate      `json:"council,omitempty"`
	Subdivision  *SubdivisionEstimate  `json:"subdivision,omitempty"`
	Insurance    *InsuranceEstimate    `json:"insurance,omitempty"`

	// Population context from the demographic lookup, kept for scoring.
	Population      int     `json:"population,omitempty"`
	ProjectedGrowth float64 `json:"projected_growth,omitempty"`

	Flip     *FinancialScenario `json:"flip,omitempty"`
	Rental   *FinancialScenario `json:"rental,omitempty"`
	Decision *StrategyDecision  `json:"decision,omitempty"`
	Score    *CompositeScore    `json:"score,omitempty"`

	Rank      int       `json:"rank,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Consistent reports whether the analysis satisfies its structural
// invariants: a decision requires both scenarios, a score requires a decision.
func (a Analysis) Consistent() bool {
	if a.Decision != nil && (a.Flip == nil || a.Rental == nil) {
		return false
	}
	if a.Score != nil && a.Decision == nil {
		return false
	}
	return true
}

// ListingOutcome is the per-listing result of a batch run.
type ListingOutcome string

const (
	OutcomeAnalyzed ListingOutcome = "analyzed"
	OutcomeRejected ListingOutcome = "rejected"
	OutcomeSkipped  ListingOutcome = "skipped" // input-invalid
	OutcomeFailed   ListingOutcome = "failed"
)

// BatchItem pairs a listing with its batch outcome.
type BatchItem struct {
	ListingID string         `json:"listing_id"`
	Outcome   ListingOutcome `json:"outcome"`
	Reason    string         `json:"reason,omitempty"`
	Score     float64        `json:"score,omitempty"`
	Verdict   Verdict        `json:"verdict,omitempty"`
}

// BatchResult is the aggregate outcome of one batch run.
type BatchResult struct {
	BatchID   string      `json:"batch_id"`
	Items     []BatchItem `json:"items"`
	Analyzed  int         `json:"analyzed"`
	Rejected  int         `json:"rejected"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	StartedAt time.Time   `json:"started_at"`
	Duration  int64       `json:"duration_ms"`
}
