package model

import "time"

// FilterStatus is the Stage 1 outcome for a listing.
type FilterStatus string

const (
	FilterStatusPending  FilterStatus = "pending"
	FilterStatusPassed   FilterStatus = "passed"
	FilterStatusRejected FilterStatus = "rejected"
)

// AnalysisStatus tracks where a listing sits in the evaluation lifecycle.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusInProgress AnalysisStatus = "in_progress"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// Listing is one scraped property listing. It is created by the ingestion
// side and read-only to the pipeline; a new scrape cycle replaces the row
// rather than mutating it in place.
type Listing struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id"` // listing ID on the originating site
	URL         string `json:"url,omitempty"`
	Address     string `json:"address"`
	FullAddress string `json:"full_address,omitempty"`
	Suburb      string `json:"suburb"`
	District    string `json:"district"`
	Region      string `json:"region"`

	AskingPrice  float64 `json:"asking_price"` // 0 when the listing has no parseable price
	DisplayPrice string  `json:"display_price,omitempty"`
	CapitalValue float64 `json:"capital_value,omitempty"`

	TitleType    string  `json:"title_type"`
	PropertyType string  `json:"property_type"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    int     `json:"bathrooms"`
	LandArea     float64 `json:"land_area"`  // sqm, 0 = unknown
	FloorArea    float64 `json:"floor_area"` // sqm, 0 = unknown
	HasGarage    bool    `json:"has_garage,omitempty"`

	Photos      []string `json:"photos,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`

	// Hints captured at scrape time, used by estimators as secondary sources.
	MarketEstimate   float64 `json:"market_estimate,omitempty"`    // site's estimated market price
	WeeklyRentHint   float64 `json:"weekly_rent_hint,omitempty"`   // site's estimated weekly rent
	NearbySales      []Sale  `json:"nearby_sales,omitempty"`       // recent sales near this listing

	FilterStatus    FilterStatus   `json:"filter_status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	AnalysisStatus  AnalysisStatus `json:"analysis_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sale is a single comparable sale record.
type Sale struct {
	Address  string    `json:"address,omitempty"`
	Suburb   string    `json:"suburb"`
	District string    `json:"district,omitempty"`
	Region   string    `json:"region"`
	Bedrooms int       `json:"bedrooms"`
	LandArea float64   `json:"land_area,omitempty"`
	FloorArea float64  `json:"floor_area,omitempty"` // sqm, 0 = unknown
	Price    float64   `json:"price"`
	SoldAt   time.Time `json:"sold_at"`
}

// EffectivePrice returns the price the financial models should use: the
// parsed asking price when present, else the capital value as a stand-in.
func (l Listing) EffectivePrice() float64 {
	if l.AskingPrice > 0 {
		return l.AskingPrice
	}
	return l.CapitalValue
}
