// Package store persists listings and their analyses. Analyses are written
// whole: a failed pipeline run never leaves a partially updated record.
package store

import (
	"context"

	"github.com/harbourstone/dealscout/internal/model"
)

// ListingFilter specifies criteria for listing queries.
type ListingFilter struct {
	FilterStatus   model.FilterStatus   `json:"filter_status,omitempty"`
	AnalysisStatus model.AnalysisStatus `json:"analysis_status,omitempty"`
	Suburb         string               `json:"suburb,omitempty"`
	District       string               `json:"district,omitempty"`
	Limit          int                  `json:"limit,omitempty"`
	Offset         int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for the evaluation pipeline.
type Store interface {
	// Listings
	SaveListing(ctx context.Context, l *model.Listing) error
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)
	UpdateListingStatus(ctx context.Context, id string, filterStatus model.FilterStatus, analysisStatus model.AnalysisStatus, reason string) error

	// Analyses. SaveAnalysis replaces the whole record for the listing.
	SaveAnalysis(ctx context.Context, a *model.Analysis) error
	GetAnalysis(ctx context.Context, listingID string) (*model.Analysis, error)
	ListRanked(ctx context.Context, limit int) ([]model.Analysis, error)
	UpdateRanks(ctx context.Context, ranks map[string]int) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
