// Package lookup defines the external data collaborators the pipeline
// consumes. Every client can return ErrUnavailable; callers degrade to
// fallback values rather than failing the listing.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/harbourstone/dealscout/internal/model"
)

// ErrUnavailable signals that the external source could not serve the
// request. It is a normal condition, not a pipeline failure.
var ErrUnavailable = errors.New("lookup: unavailable")

// DemographicData describes a territorial authority.
type DemographicData struct {
	Population       int     `json:"population"`
	HistoricalGrowth float64 `json:"historical_growth"` // multi-year change, fraction
	ProjectedGrowth  float64 `json:"projected_growth"`  // forward-looking, fraction
}

// Demographics resolves population and growth for a district or region.
type Demographics interface {
	Lookup(ctx context.Context, district, region string) (DemographicData, error)
}

// RentQuery narrows bond records for rental estimation.
type RentQuery struct {
	Suburb   string
	District string
	Region   string
	Bedrooms int
	// RegionWide widens the search to the whole region when district-level
	// samples are too thin.
	RegionWide bool
}

// RentData is the tenancy bond aggregate for a query.
type RentData struct {
	MedianWeeklyRent float64 `json:"median_weekly_rent"`
	Samples          int     `json:"samples"`
}

// Tenancy resolves median rents from tenancy bond records.
type Tenancy interface {
	BondRents(ctx context.Context, q RentQuery) (RentData, error)
}

// Council resolves rates and zoning for an address.
type Council interface {
	AnnualRates(ctx context.Context, address, district string) (float64, error)
	Zoning(ctx context.Context, address, district string) (string, error)
}

// PropertyDetails is the subset of listing data insurers quote on.
type PropertyDetails struct {
	Bedrooms     int
	Bathrooms    int
	FloorArea    float64
	LandArea     float64
	PropertyType string
}

// InsuranceQuote is an insurability decision plus indicative premium.
type InsuranceQuote struct {
	Insurable     bool    `json:"insurable"`
	AnnualPremium float64 `json:"annual_premium"`
	Insurer       string  `json:"insurer,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// Insurance quotes a property.
type Insurance interface {
	Quote(ctx context.Context, address string, details PropertyDetails) (InsuranceQuote, error)
}

// CompQuery narrows comparable sales for ARV estimation.
type CompQuery struct {
	Suburb      string
	Region      string
	Bedrooms    int
	LandArea    float64 // 0 = no land band filter
	LandBandPct float64
	Since       time.Time
	// RegionWide drops the suburb and land-band criteria, keeping bedrooms
	// and recency, for the widened retry.
	RegionWide bool
}

// ComparableSales resolves recent sales matching a query.
type ComparableSales interface {
	Search(ctx context.Context, q CompQuery) ([]model.Sale, error)
}
