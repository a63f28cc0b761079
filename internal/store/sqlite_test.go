package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourstone/dealscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func testListing(id string) *model.Listing {
	return &model.Listing{
		ID:          id,
		Address:     "12 Harbour Tce",
		Suburb:      "Mosgiel",
		District:    "Dunedin",
		Region:      "Otago",
		AskingPrice: 450_000,
		Bedrooms:    3,
		LandArea:    650,
	}
}

func TestSaveAndGetListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := testListing("l1")
	require.NoError(t, s.SaveListing(ctx, l))
	assert.Equal(t, model.FilterStatusPending, l.FilterStatus)
	assert.False(t, l.CreatedAt.IsZero())

	got, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "12 Harbour Tce", got.Address)
	assert.Equal(t, "Mosgiel", got.Suburb)
	assert.InDelta(t, 450_000, got.AskingPrice, 0.01)
}

func TestSaveListingGeneratesID(t *testing.T) {
	s := newTestStore(t)
	l := testListing("")
	require.NoError(t, s.SaveListing(context.Background(), l))
	assert.NotEmpty(t, l.ID)
}

func TestSaveListingUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := testListing("l1")
	require.NoError(t, s.SaveListing(ctx, l))

	l.AskingPrice = 430_000
	require.NoError(t, s.SaveListing(ctx, l))

	got, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.InDelta(t, 430_000, got.AskingPrice, 0.01)

	all, err := s.ListListings(ctx, ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetListingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetListing(context.Background(), "missing")
	assert.Error(t, err)
}

func TestListListingsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testListing("l1")
	require.NoError(t, s.SaveListing(ctx, a))

	b := testListing("l2")
	b.Suburb = "Green Island"
	b.FilterStatus = model.FilterStatusRejected
	require.NoError(t, s.SaveListing(ctx, b))

	pending, err := s.ListListings(ctx, ListingFilter{FilterStatus: model.FilterStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "l1", pending[0].ID)

	bySuburb, err := s.ListListings(ctx, ListingFilter{Suburb: "Green Island"})
	require.NoError(t, err)
	require.Len(t, bySuburb, 1)
	assert.Equal(t, "l2", bySuburb[0].ID)
}

func TestUpdateListingStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveListing(ctx, testListing("l1")))
	require.NoError(t, s.UpdateListingStatus(ctx, "l1", model.FilterStatusRejected, model.AnalysisStatusPending, "price above ceiling"))

	got, err := s.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, model.FilterStatusRejected, got.FilterStatus)
	assert.Equal(t, "price above ceiling", got.RejectionReason)

	err = s.UpdateListingStatus(ctx, "missing", model.FilterStatusPassed, model.AnalysisStatusPending, "")
	assert.Error(t, err)
}

func completedAnalysis(listingID string, score float64) *model.Analysis {
	return &model.Analysis{
		ListingID: listingID,
		Flip:      &model.FinancialScenario{Strategy: model.StrategyFlip, ROI: 18},
		Rental:    &model.FinancialScenario{Strategy: model.StrategyRental, GrossYield: 7},
		Decision:  &model.StrategyDecision{Recommended: "FLIP"},
		Score:     &model.CompositeScore{Score: score, Verdict: model.VerdictBuy},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveListing(ctx, testListing("l1")))
	a := completedAnalysis("l1", 62.5)
	require.NoError(t, s.SaveAnalysis(ctx, a))

	got, err := s.GetAnalysis(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 62.5, got.Score.Score, 0.01)
	assert.Equal(t, "FLIP", got.Decision.Recommended)
}

func TestSaveAnalysisReplacesWhole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveListing(ctx, testListing("l1")))
	first := completedAnalysis("l1", 62.5)
	first.Subdivision = &model.SubdivisionEstimate{Potential: true, NetValueAdd: 28_000}
	require.NoError(t, s.SaveAnalysis(ctx, first))

	// The replacement drops subdivision; the old value must not survive.
	require.NoError(t, s.SaveAnalysis(ctx, completedAnalysis("l1", 55)))

	got, err := s.GetAnalysis(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, got.Subdivision)
	assert.InDelta(t, 55, got.Score.Score, 0.01)
}

func TestSaveAnalysisRejectsInconsistent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveListing(ctx, testListing("l1")))

	// A score without a decision violates the structural invariant.
	bad := &model.Analysis{
		ListingID: "l1",
		Score:     &model.CompositeScore{Score: 50},
	}
	assert.Error(t, s.SaveAnalysis(ctx, bad))
}

func TestGetAnalysisMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetAnalysis(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRankedAndUpdateRanks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, s.SaveListing(ctx, testListing(id)))
		require.NoError(t, s.SaveAnalysis(ctx, completedAnalysis(id, float64(40+i*20))))
	}

	ranked, err := s.ListRanked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "l3", ranked[0].ListingID)
	assert.Equal(t, "l1", ranked[2].ListingID)

	require.NoError(t, s.UpdateRanks(ctx, map[string]int{"l3": 1, "l2": 2, "l1": 3}))

	got, err := s.GetAnalysis(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rank)
}
