package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/store"
	"github.com/harbourstone/dealscout/pkg/vision"
)

type stubVision struct {
	calls  int
	report vision.Report
	err    error
}

func (s *stubVision) Assess(_ context.Context, _ vision.Request) (*vision.Report, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	report := s.report
	return &report, nil
}

type stubDemographics struct {
	data lookup.DemographicData
	err  error
}

func (s *stubDemographics) Lookup(_ context.Context, _, _ string) (lookup.DemographicData, error) {
	return s.data, s.err
}

type stubComps struct {
	sales []model.Sale
}

func (s *stubComps) Search(_ context.Context, _ lookup.CompQuery) ([]model.Sale, error) {
	return s.sales, nil
}

type stubTenancy struct {
	data lookup.RentData
}

func (s *stubTenancy) BondRents(_ context.Context, _ lookup.RentQuery) (lookup.RentData, error) {
	return s.data, nil
}

type stubCouncil struct {
	rates       float64
	zone        string
	zoningCalls int
}

func (s *stubCouncil) AnnualRates(_ context.Context, _, _ string) (float64, error) {
	return s.rates, nil
}

func (s *stubCouncil) Zoning(_ context.Context, _, _ string) (string, error) {
	s.zoningCalls++
	return s.zone, nil
}

type stubInsurance struct {
	quote lookup.InsuranceQuote
	err   error
}

func (s *stubInsurance) Quote(_ context.Context, _ string, _ lookup.PropertyDetails) (lookup.InsuranceQuote, error) {
	return s.quote, s.err
}

func testClients() (Clients, *stubVision, *stubCouncil) {
	v := &stubVision{report: vision.Report{
		Level:         "MODERATE",
		RoofCondition: "OK",
		KeyItems:      []string{"kitchen refresh", "repaint"},
		Confidence:    0.8,
	}}
	council := &stubCouncil{rates: 2_800, zone: "RESIDENTIAL_MIXED"}
	recent := time.Now().AddDate(0, -2, 0)
	return Clients{
		Vision:       v,
		Demographics: &stubDemographics{data: lookup.DemographicData{Population: 120_000, HistoricalGrowth: 0.03, ProjectedGrowth: 0.04}},
		Comparables: &stubComps{sales: []model.Sale{
			{Suburb: "Kensington", Region: "Otago", Bedrooms: 3, FloorArea: 100, Price: 600_000, SoldAt: recent},
			{Suburb: "Kensington", Region: "Otago", Bedrooms: 3, FloorArea: 110, Price: 640_000, SoldAt: recent},
			{Suburb: "Kensington", Region: "Otago", Bedrooms: 3, FloorArea: 95, Price: 580_000, SoldAt: recent},
			{Suburb: "Kensington", Region: "Otago", Bedrooms: 3, FloorArea: 105, Price: 615_000, SoldAt: recent},
			{Suburb: "Kensington", Region: "Otago", Bedrooms: 3, FloorArea: 102, Price: 605_000, SoldAt: recent},
		}},
		Tenancy:   &stubTenancy{data: lookup.RentData{MedianWeeklyRent: 520, Samples: 12}},
		Council:   council,
		Insurance: &stubInsurance{quote: lookup.InsuranceQuote{Insurable: true, AnnualPremium: 1_800, Insurer: "Tower"}},
	}, v, council
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Vision.CallInterval = 0
	cfg.Lookup.Timeout = time.Second
	cfg.Batch.MaxConcurrentListings = 2
	return cfg
}

func newTestOrchestrator(t *testing.T, clients Clients) (*Orchestrator, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return New(st, testConfig(t), clients), st
}

func seedListing(t *testing.T, st store.Store, l *model.Listing) {
	t.Helper()
	require.NoError(t, st.SaveListing(context.Background(), l))
}

func goodListing(id string) *model.Listing {
	return &model.Listing{
		ID:           id,
		SourceID:     "trademe-" + id,
		Address:      "14 Melbourne St",
		Suburb:       "Kensington",
		District:     "Dunedin City",
		Region:       "Otago",
		AskingPrice:  450_000,
		TitleType:    "freehold",
		PropertyType: "house",
		Bedrooms:     3,
		Bathrooms:    1,
		LandArea:     900,
		FloorArea:    105,
		HasGarage:    true,
		Photos:       []string{"p1.jpg", "p2.jpg", "p3.jpg"},
		Description:  "Solid three bedroom home with heat pump, ready for a tidy up.",
	}
}

func TestAnalyzeProducesCompleteAnalysis(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("l-1"))

	a, err := o.Analyze(ctx, "l-1")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.True(t, a.Consistent())
	require.NotNil(t, a.Condition)
	assert.Equal(t, model.RenoModerate, a.Condition.Level)
	assert.Equal(t, model.SourceExternal, a.Condition.Source)
	assert.Contains(t, a.Condition.HealthyHomes, "heat pump installed")

	require.NotNil(t, a.ARV)
	assert.Equal(t, model.SourceExternal, a.ARV.Source)
	assert.Equal(t, 5, a.ARV.ComparablesUsed)
	assert.False(t, a.ARV.SearchWidened)

	require.NotNil(t, a.RentalIncome)
	assert.Equal(t, 520.0, a.RentalIncome.WeeklyRent)
	assert.Equal(t, 12, a.RentalIncome.BondSamples)

	require.NotNil(t, a.Council)
	assert.Equal(t, 2_800.0, a.Council.AnnualRates)

	require.NotNil(t, a.Subdivision)
	assert.True(t, a.Subdivision.Potential, "900sqm on a 400sqm minimum lot")
	assert.Equal(t, "RESIDENTIAL_MIXED", a.Subdivision.Zoning)

	require.NotNil(t, a.Insurance)
	assert.True(t, a.Insurance.Insurable)

	assert.Equal(t, 120_000, a.Population)
	assert.InDelta(t, 0.04, a.ProjectedGrowth, 1e-9)

	require.NotNil(t, a.Flip)
	require.NotNil(t, a.Rental)
	require.NotNil(t, a.Decision)
	assert.NotEmpty(t, a.Decision.Recommended)
	require.NotNil(t, a.Score)
	assert.GreaterOrEqual(t, a.Score.Score, 0.0)
	assert.LessOrEqual(t, a.Score.Score, 100.0)
	assert.NotEmpty(t, a.Score.Verdict)

	l, err := st.GetListing(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, model.FilterStatusPassed, l.FilterStatus)
	assert.Equal(t, model.AnalysisStatusCompleted, l.AnalysisStatus)

	saved, err := st.GetAnalysis(ctx, "l-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, a.Score.Score, saved.Score.Score)
}

func TestAnalyzeRejectedListingStopsAtFilters(t *testing.T) {
	ctx := context.Background()
	clients, v, _ := testClients()
	o, st := newTestOrchestrator(t, clients)

	l := goodListing("l-over")
	l.AskingPrice = 800_000
	seedListing(t, st, l)

	a, err := o.Analyze(ctx, "l-over")
	require.NoError(t, err)
	require.NotNil(t, a)

	rejected := false
	for _, r := range a.FilterResults {
		if r.Verdict == model.FilterReject {
			rejected = true
			assert.Equal(t, "price_ceiling", r.Rule)
		}
	}
	assert.True(t, rejected)
	assert.Nil(t, a.Flip, "rejected listings never reach the financial models")
	assert.Nil(t, a.Score)
	assert.Equal(t, 0, v.calls, "no metered call for a rejected listing")

	got, err := st.GetListing(ctx, "l-over")
	require.NoError(t, err)
	assert.Equal(t, model.FilterStatusRejected, got.FilterStatus)
	assert.Equal(t, model.AnalysisStatusCompleted, got.AnalysisStatus)
	assert.Contains(t, got.RejectionReason, "over budget")
}

func TestRunBatchCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)

	seedListing(t, st, goodListing("b-good"))

	over := goodListing("b-over")
	over.AskingPrice = 900_000
	seedListing(t, st, over)

	invalid := goodListing("b-invalid")
	invalid.Address = ""
	invalid.FullAddress = ""
	seedListing(t, st, invalid)

	res, err := o.RunBatch(ctx, store.ListingFilter{AnalysisStatus: model.AnalysisStatusPending})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 1, res.Analyzed)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, res.Items, 3)
	assert.NotEmpty(t, res.BatchID)
}

func TestRunBatchAssignsRanks(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)

	seedListing(t, st, goodListing("r-1"))

	weaker := goodListing("r-2")
	weaker.Photos = nil
	weaker.LandArea = 300
	weaker.HasGarage = false
	seedListing(t, st, weaker)

	_, err := o.RunBatch(ctx, store.ListingFilter{AnalysisStatus: model.AnalysisStatusPending})
	require.NoError(t, err)

	a1, err := st.GetAnalysis(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, a1)
	a2, err := st.GetAnalysis(ctx, "r-2")
	require.NoError(t, err)
	require.NotNil(t, a2)

	ranks := []int{a1.Rank, a2.Rank}
	assert.ElementsMatch(t, []int{1, 2}, ranks)
	if a1.Score.Score >= a2.Score.Score {
		assert.Equal(t, 1, a1.Rank)
	} else {
		assert.Equal(t, 1, a2.Rank)
	}
}

func TestRepeatAnalysisSkipsUnchangedExternalCalls(t *testing.T) {
	ctx := context.Background()
	clients, v, council := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("c-1"))

	_, err := o.Analyze(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls)
	assert.Equal(t, 1, council.zoningCalls)

	// Same photos and land details: both fingerprints hold.
	_, err = o.Analyze(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls, "unchanged photo set must not trigger a second assessment")
	assert.Equal(t, 1, council.zoningCalls, "unchanged parcel must not trigger a second zoning lookup")

	l, err := st.GetListing(ctx, "c-1")
	require.NoError(t, err)
	l.Photos = append(l.Photos, "p4.jpg")
	require.NoError(t, st.SaveListing(ctx, l))

	_, err = o.Analyze(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 2, v.calls, "new photo changes the fingerprint")
	assert.Equal(t, 1, council.zoningCalls)
}

func TestRejectionPreservesPriorEstimates(t *testing.T) {
	ctx := context.Background()
	clients, v, _ := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("p-1"))

	_, err := o.Analyze(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls)

	l, err := st.GetListing(ctx, "p-1")
	require.NoError(t, err)
	l.AskingPrice = 900_000
	require.NoError(t, st.SaveListing(ctx, l))

	_, err = o.Analyze(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls, "a rejection never spends a metered call")

	got, err := st.GetListing(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, model.FilterStatusRejected, got.FilterStatus)

	saved, err := st.GetAnalysis(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.NotNil(t, saved.Condition, "a price spike must not wipe cached estimates")
	require.NotNil(t, saved.Score)
	rejected := false
	for _, r := range saved.FilterResults {
		if r.Verdict == model.FilterReject {
			rejected = true
		}
	}
	assert.True(t, rejected, "the refreshed filter verdicts are recorded")

	l.AskingPrice = 450_000
	require.NoError(t, st.SaveListing(ctx, l))

	_, err = o.Analyze(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.calls, "unchanged photo set reuses the assessment after re-passing")
}

func TestScenarioRecomputesWithoutPersisting(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("s-1"))

	base, err := o.Analyze(ctx, "s-1")
	require.NoError(t, err)

	res, err := o.Scenario(ctx, "s-1", Adjustments{
		ARV:              700_000,
		FlipInterestRate: 0.08,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 700_000.0, res.Flip.SalePrice)
	assert.Equal(t, 0.08, res.Flip.InterestRate)
	assert.Greater(t, res.Flip.NetProfit, base.Flip.NetProfit, "higher sale price must lift profit")
	assert.Equal(t, base.Rental.WeeklyRent, res.Rental.WeeklyRent)
	require.NotNil(t, res.Decision)

	saved, err := st.GetAnalysis(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, base.Flip.SalePrice, saved.Flip.SalePrice, "stored analysis keeps estimated figures")
}

func TestScenarioRoundTripMatchesStoredModels(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("s-rt"))

	base, err := o.Analyze(ctx, "s-rt")
	require.NoError(t, err)

	// Overrides equal to the stored estimates must reproduce the stored
	// models exactly.
	res, err := o.Scenario(ctx, "s-rt", Adjustments{
		PurchasePrice:  base.Flip.PurchasePrice,
		RenovationCost: base.Renovation.Total,
		ARV:            base.ARV.Value,
		WeeklyRent:     base.RentalIncome.WeeklyRent,
		TimelineWeeks:  base.Timeline.Weeks,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, base.Flip, res.Flip)
	assert.Equal(t, base.Rental, res.Rental)
	assert.Equal(t, base.Decision, res.Decision)
}

func TestScenarioRequiresCompletedAnalysis(t *testing.T) {
	ctx := context.Background()
	clients, _, _ := testClients()
	o, st := newTestOrchestrator(t, clients)
	seedListing(t, st, goodListing("s-none"))

	_, err := o.Scenario(ctx, "s-none", Adjustments{ARV: 700_000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completed analysis")
}

func TestValidateRejectsUnusableInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Listing)
	}{
		{"missing address", func(l *model.Listing) { l.Address = ""; l.FullAddress = "" }},
		{"missing region", func(l *model.Listing) { l.Region = "" }},
		{"implausible bedrooms", func(l *model.Listing) { l.Bedrooms = 45 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := goodListing("v-1")
			tc.mutate(l)
			assert.Error(t, validate(*l))
		})
	}
	assert.NoError(t, validate(*goodListing("v-ok")))
}
