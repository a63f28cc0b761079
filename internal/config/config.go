package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and passed into the pipeline by value reference; nothing mutates
// it afterwards.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Filters  FilterConfig   `yaml:"filters" mapstructure:"filters"`
	Reno     RenoConfig     `yaml:"renovation" mapstructure:"renovation"`
	ARV      ARVConfig      `yaml:"arv" mapstructure:"arv"`
	Rental   RentalEstConfig `yaml:"rental_estimate" mapstructure:"rental_estimate"`
	Subdiv   SubdivConfig   `yaml:"subdivision" mapstructure:"subdivision"`
	Flip     FlipConfig     `yaml:"flip" mapstructure:"flip"`
	Hold     HoldConfig     `yaml:"hold" mapstructure:"hold"`
	Strategy StrategyConfig `yaml:"strategy" mapstructure:"strategy"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Vision   VisionConfig   `yaml:"vision" mapstructure:"vision"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Lookup   LookupConfig   `yaml:"lookup" mapstructure:"lookup"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FilterConfig holds Stage 1 thresholds.
type FilterConfig struct {
	MaxPrice       float64  `yaml:"max_price" mapstructure:"max_price"`
	MinPopulation  int      `yaml:"min_population" mapstructure:"min_population"`
	RejectedTitles []string `yaml:"rejected_titles" mapstructure:"rejected_titles"`
}

// RenoConfig holds renovation cost and timeline tables.
type RenoConfig struct {
	// Mode selects how cost and timeline are produced: "rule-based" derives
	// them from the tables below, "direct" trusts the vision provider's own
	// cost/timeline figures when present.
	Mode string `yaml:"mode" mapstructure:"mode"`

	CostPerSqm     map[string]float64 `yaml:"cost_per_sqm" mapstructure:"cost_per_sqm"`
	WeeksPerLevel  map[string]int     `yaml:"weeks_per_level" mapstructure:"weeks_per_level"`
	FloorAreaByBed map[string]float64 `yaml:"floor_area_by_bedrooms" mapstructure:"floor_area_by_bedrooms"`

	RoofAreaFactor   float64 `yaml:"roof_area_factor" mapstructure:"roof_area_factor"`
	RoofCostPerSqm   float64 `yaml:"roof_cost_per_sqm" mapstructure:"roof_cost_per_sqm"`
	WeatherboardCost float64 `yaml:"weatherboard_cost" mapstructure:"weatherboard_cost"`
	FoundationCost   float64 `yaml:"foundation_cost" mapstructure:"foundation_cost"`
	MoistureCost     float64 `yaml:"moisture_cost" mapstructure:"moisture_cost"`
	ContingencyPct   float64 `yaml:"contingency_pct" mapstructure:"contingency_pct"`

	// Per-signal credit against add-on work when the seller already claims
	// healthy homes compliance items (insulation, heat pump, ventilation).
	HealthyHomesCredit float64 `yaml:"healthy_homes_credit" mapstructure:"healthy_homes_credit"`

	// Timeline stretch for heavy add-on work.
	AddOnWeekThreshold  float64 `yaml:"add_on_week_threshold" mapstructure:"add_on_week_threshold"`
	AddOnWeekThreshold2 float64 `yaml:"add_on_week_threshold_2" mapstructure:"add_on_week_threshold_2"`
	TargetWeeks         int     `yaml:"target_weeks" mapstructure:"target_weeks"`
}

// ARVConfig holds comparable-sales search and adjustment settings.
type ARVConfig struct {
	MinComparables   int     `yaml:"min_comparables" mapstructure:"min_comparables"`
	RecencyMonths    int     `yaml:"recency_months" mapstructure:"recency_months"`
	LandBandPct      float64 `yaml:"land_band_pct" mapstructure:"land_band_pct"`
	LargeSectionSqm  float64 `yaml:"large_section_sqm" mapstructure:"large_section_sqm"`
	LargeSectionAdj  float64 `yaml:"large_section_adj" mapstructure:"large_section_adj"`
	GarageAdj        float64 `yaml:"garage_adj" mapstructure:"garage_adj"`
	MarketUpliftPct  float64 `yaml:"market_uplift_pct" mapstructure:"market_uplift_pct"`
	AskingUpliftPct  float64 `yaml:"asking_uplift_pct" mapstructure:"asking_uplift_pct"`
}

// RentalEstConfig holds rental income estimation settings.
type RentalEstConfig struct {
	MinBondSamples int     `yaml:"min_bond_samples" mapstructure:"min_bond_samples"`
	RentWeeks      float64 `yaml:"rent_weeks" mapstructure:"rent_weeks"`
	FallbackBase   map[string]float64 `yaml:"fallback_base" mapstructure:"fallback_base"` // bedrooms -> weekly rent
}

// SubdivConfig holds subdivision feasibility settings.
type SubdivConfig struct {
	MinLotByZone map[string]float64 `yaml:"min_lot_by_zone" mapstructure:"min_lot_by_zone"`
	LandValuePct float64            `yaml:"land_value_pct" mapstructure:"land_value_pct"`
	UpliftPct    float64            `yaml:"uplift_pct" mapstructure:"uplift_pct"`
	FixedCosts   float64            `yaml:"fixed_costs" mapstructure:"fixed_costs"`
}

// FlipConfig holds the flip model constants.
type FlipConfig struct {
	PurchaseCosts  float64 `yaml:"purchase_costs" mapstructure:"purchase_costs"`
	GSTRefundPct   float64 `yaml:"gst_refund_pct" mapstructure:"gst_refund_pct"`
	InterestRate   float64 `yaml:"interest_rate" mapstructure:"interest_rate"`
	AnnualInsurance float64 `yaml:"annual_insurance" mapstructure:"annual_insurance"`
	CommissionPct  float64 `yaml:"commission_pct" mapstructure:"commission_pct"`
	LegalSell      float64 `yaml:"legal_sell" mapstructure:"legal_sell"`
	Marketing      float64 `yaml:"marketing" mapstructure:"marketing"`
	Accounting     float64 `yaml:"accounting" mapstructure:"accounting"`
	TaxRate        float64 `yaml:"tax_rate" mapstructure:"tax_rate"`
	WeeksPerMonth  float64 `yaml:"weeks_per_month" mapstructure:"weeks_per_month"`
	DefaultUplift  float64 `yaml:"default_uplift" mapstructure:"default_uplift"` // sale price fallback when no ARV
}

// HoldConfig holds the rental (buy and hold) model constants.
type HoldConfig struct {
	PurchaseCosts     float64 `yaml:"purchase_costs" mapstructure:"purchase_costs"`
	RentWeeks         float64 `yaml:"rent_weeks" mapstructure:"rent_weeks"`
	Accounting        float64 `yaml:"accounting" mapstructure:"accounting"`
	InterestRate      float64 `yaml:"interest_rate" mapstructure:"interest_rate"`
	DeductiblePct     float64 `yaml:"deductible_pct" mapstructure:"deductible_pct"`
	ManagementPct     float64 `yaml:"management_pct" mapstructure:"management_pct"`
	LettingFee        float64 `yaml:"letting_fee" mapstructure:"letting_fee"`
	LettingFeeGSTMul  float64 `yaml:"letting_fee_gst_mul" mapstructure:"letting_fee_gst_mul"`
	Repairs           float64 `yaml:"repairs" mapstructure:"repairs"`
	ChattelsDeprPct   float64 `yaml:"chattels_depr_pct" mapstructure:"chattels_depr_pct"`
	TaxRate           float64 `yaml:"tax_rate" mapstructure:"tax_rate"`
}

// StrategyConfig holds decision thresholds.
type StrategyConfig struct {
	FlipROITarget    float64 `yaml:"flip_roi_target" mapstructure:"flip_roi_target"`       // percent
	RentalYieldTarget float64 `yaml:"rental_yield_target" mapstructure:"rental_yield_target"` // percent
	FlipPreference   float64 `yaml:"flip_preference" mapstructure:"flip_preference"`       // FLIP only when ROI > pref * yield
}

// ScoringConfig holds composite weights, reference points and verdict cuts.
type ScoringConfig struct {
	Weights ScoreWeights `yaml:"weights" mapstructure:"weights"`

	ROIRefFlip     float64 `yaml:"roi_ref_flip" mapstructure:"roi_ref_flip"`         // flip ROI scoring 100
	ROIRefRental   float64 `yaml:"roi_ref_rental" mapstructure:"roi_ref_rental"`     // yield scoring 100
	TimelineFull   int     `yaml:"timeline_full_weeks" mapstructure:"timeline_full_weeks"`
	TimelineKnee   int     `yaml:"timeline_knee_weeks" mapstructure:"timeline_knee_weeks"`
	TimelineSlope1 float64 `yaml:"timeline_slope_1" mapstructure:"timeline_slope_1"` // points/week to the knee
	TimelineSlope2 float64 `yaml:"timeline_slope_2" mapstructure:"timeline_slope_2"` // points/week past the knee
	SubdivisionRef float64 `yaml:"subdivision_ref" mapstructure:"subdivision_ref"`   // net value add scoring 100
	GrowthSlope    float64 `yaml:"growth_slope" mapstructure:"growth_slope"`
	GrowthOffset   float64 `yaml:"growth_offset" mapstructure:"growth_offset"`
	PremiumDivisor float64 `yaml:"premium_divisor" mapstructure:"premium_divisor"`   // insurability decay
	BondSampleMul  float64 `yaml:"bond_sample_mul" mapstructure:"bond_sample_mul"`

	StrongBuyCut float64 `yaml:"strong_buy_cut" mapstructure:"strong_buy_cut"`
	BuyCut       float64 `yaml:"buy_cut" mapstructure:"buy_cut"`
	MaybeCut     float64 `yaml:"maybe_cut" mapstructure:"maybe_cut"`

	HighConfidenceCut   float64 `yaml:"high_confidence_cut" mapstructure:"high_confidence_cut"`
	MediumConfidenceCut float64 `yaml:"medium_confidence_cut" mapstructure:"medium_confidence_cut"`
	HighPremiumFlag     float64 `yaml:"high_premium_flag" mapstructure:"high_premium_flag"`
}

// ScoreWeights is the composite weight vector.
type ScoreWeights struct {
	ROI          float64 `yaml:"roi" mapstructure:"roi"`
	Timeline     float64 `yaml:"timeline" mapstructure:"timeline"`
	Confidence   float64 `yaml:"confidence" mapstructure:"confidence"`
	Subdivision  float64 `yaml:"subdivision" mapstructure:"subdivision"`
	Location     float64 `yaml:"location" mapstructure:"location"`
	Insurability float64 `yaml:"insurability" mapstructure:"insurability"`
}

// Map returns the weights keyed by component name, for persisting with scores.
func (w ScoreWeights) Map() map[string]float64 {
	return map[string]float64{
		"roi":          w.ROI,
		"timeline":     w.Timeline,
		"confidence":   w.Confidence,
		"subdivision":  w.Subdivision,
		"location":     w.Location,
		"insurability": w.Insurability,
	}
}

// VisionConfig configures the photo condition provider.
type VisionConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"` // "anthropic" or "static"
	Key          string        `yaml:"key" mapstructure:"key"`
	Model        string        `yaml:"model" mapstructure:"model"`
	MaxPhotos    int           `yaml:"max_photos" mapstructure:"max_photos"`
	CallInterval time.Duration `yaml:"call_interval" mapstructure:"call_interval"` // min gap between external calls
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// BatchConfig configures batch orchestration.
type BatchConfig struct {
	MaxConcurrentListings int `yaml:"max_concurrent_listings" mapstructure:"max_concurrent_listings"`
}

// LookupConfig bounds external collaborator calls.
type LookupConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEALSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dealscout.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("filters.max_price", 500_000)
	v.SetDefault("filters.min_population", 50_000)
	v.SetDefault("filters.rejected_titles", []string{"unit title", "leasehold", "cross lease", "cross-lease"})

	v.SetDefault("renovation.mode", "rule-based")
	v.SetDefault("renovation.cost_per_sqm", map[string]float64{
		"COSMETIC": 500, "MODERATE": 1200, "MAJOR": 2000, "FULL_GUT": 3500,
	})
	v.SetDefault("renovation.weeks_per_level", map[string]int{
		"NONE": 0, "COSMETIC": 2, "MODERATE": 6, "MAJOR": 12, "FULL_GUT": 20,
	})
	v.SetDefault("renovation.floor_area_by_bedrooms", map[string]float64{
		"1": 60, "2": 85, "3": 110, "4": 140, "5": 170, "6": 200,
	})
	v.SetDefault("renovation.roof_area_factor", 1.3)
	v.SetDefault("renovation.roof_cost_per_sqm", 80)
	v.SetDefault("renovation.weatherboard_cost", 15_000)
	v.SetDefault("renovation.foundation_cost", 30_000)
	v.SetDefault("renovation.moisture_cost", 10_000)
	v.SetDefault("renovation.contingency_pct", 0.15)
	v.SetDefault("renovation.healthy_homes_credit", 2_500)
	v.SetDefault("renovation.add_on_week_threshold", 20_000)
	v.SetDefault("renovation.add_on_week_threshold_2", 40_000)
	v.SetDefault("renovation.target_weeks", 8)

	v.SetDefault("arv.min_comparables", 3)
	v.SetDefault("arv.recency_months", 12)
	v.SetDefault("arv.land_band_pct", 0.5)
	v.SetDefault("arv.large_section_sqm", 800)
	v.SetDefault("arv.large_section_adj", 20_000)
	v.SetDefault("arv.garage_adj", 15_000)
	v.SetDefault("arv.market_uplift_pct", 0.15)
	v.SetDefault("arv.asking_uplift_pct", 0.20)

	v.SetDefault("rental_estimate.min_bond_samples", 3)
	v.SetDefault("rental_estimate.rent_weeks", 50)
	v.SetDefault("rental_estimate.fallback_base", map[string]float64{
		"1": 350, "2": 450, "3": 550, "4": 650, "5": 750, "6": 850,
	})

	v.SetDefault("subdivision.min_lot_by_zone", map[string]float64{
		"RESIDENTIAL_SINGLE": 600,
		"RESIDENTIAL_MIXED":  400,
		"RESIDENTIAL_MEDIUM": 300,
		"RESIDENTIAL_HIGH":   200,
	})
	v.SetDefault("subdivision.land_value_pct", 0.30)
	v.SetDefault("subdivision.uplift_pct", 0.60)
	v.SetDefault("subdivision.fixed_costs", 80_000)

	v.SetDefault("flip.purchase_costs", 5_000)
	v.SetDefault("flip.gst_refund_pct", 0.15)
	v.SetDefault("flip.interest_rate", 0.054)
	v.SetDefault("flip.annual_insurance", 1_000)
	v.SetDefault("flip.commission_pct", 0.0345)
	v.SetDefault("flip.legal_sell", 2_000)
	v.SetDefault("flip.marketing", 8_500)
	v.SetDefault("flip.accounting", 2_500)
	v.SetDefault("flip.tax_rate", 0.33)
	v.SetDefault("flip.weeks_per_month", 4.33)
	v.SetDefault("flip.default_uplift", 0.20)

	v.SetDefault("hold.purchase_costs", 5_000)
	v.SetDefault("hold.rent_weeks", 50)
	v.SetDefault("hold.accounting", 1_100)
	v.SetDefault("hold.interest_rate", 0.048)
	v.SetDefault("hold.deductible_pct", 0.80)
	v.SetDefault("hold.management_pct", 0.10)
	v.SetDefault("hold.letting_fee", 300)
	v.SetDefault("hold.letting_fee_gst_mul", 1.15)
	v.SetDefault("hold.repairs", 500)
	v.SetDefault("hold.chattels_depr_pct", 0.10)
	v.SetDefault("hold.tax_rate", 0.175)

	v.SetDefault("strategy.flip_roi_target", 15.0)
	v.SetDefault("strategy.rental_yield_target", 9.0)
	v.SetDefault("strategy.flip_preference", 1.5)

	v.SetDefault("scoring.weights.roi", 0.40)
	v.SetDefault("scoring.weights.timeline", 0.15)
	v.SetDefault("scoring.weights.confidence", 0.15)
	v.SetDefault("scoring.weights.subdivision", 0.15)
	v.SetDefault("scoring.weights.location", 0.10)
	v.SetDefault("scoring.weights.insurability", 0.05)
	v.SetDefault("scoring.roi_ref_flip", 30.0)
	v.SetDefault("scoring.roi_ref_rental", 15.0)
	v.SetDefault("scoring.timeline_full_weeks", 8)
	v.SetDefault("scoring.timeline_knee_weeks", 16)
	v.SetDefault("scoring.timeline_slope_1", 5.0)
	v.SetDefault("scoring.timeline_slope_2", 3.0)
	v.SetDefault("scoring.subdivision_ref", 100_000)
	v.SetDefault("scoring.growth_slope", 500.0)
	v.SetDefault("scoring.growth_offset", 0.05)
	v.SetDefault("scoring.premium_divisor", 30.0)
	v.SetDefault("scoring.bond_sample_mul", 5.0)
	v.SetDefault("scoring.strong_buy_cut", 75.0)
	v.SetDefault("scoring.buy_cut", 55.0)
	v.SetDefault("scoring.maybe_cut", 35.0)
	v.SetDefault("scoring.high_confidence_cut", 70.0)
	v.SetDefault("scoring.medium_confidence_cut", 40.0)
	v.SetDefault("scoring.high_premium_flag", 3_500)

	v.SetDefault("vision.provider", "static")
	v.SetDefault("vision.model", "claude-haiku-4-5-20251001")
	v.SetDefault("vision.max_photos", 6)
	v.SetDefault("vision.call_interval", 65*time.Second)
	v.SetDefault("vision.timeout", 90*time.Second)

	v.SetDefault("batch.max_concurrent_listings", 4)
	v.SetDefault("lookup.timeout", 15*time.Second)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
