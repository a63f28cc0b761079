package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/store"
)

func seedScored(t *testing.T, st store.Store, id, address string, score float64, rank int) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.SaveListing(ctx, &model.Listing{
		ID:          id,
		Address:     address,
		Suburb:      "Caversham",
		District:    "Dunedin City",
		Region:      "Otago",
		AskingPrice: 420_000,
		Bedrooms:    3,
	}))

	a := &model.Analysis{
		ListingID: id,
		Renovation: &model.RenovationEstimate{Total: 65_000},
		Timeline:   &model.TimelineEstimate{Weeks: 6},
		ARV:        &model.ARVEstimate{Value: 610_000, Confidence: 60},
		RentalIncome: &model.RentalIncomeEstimate{WeeklyRent: 520},
		Subdivision:  &model.SubdivisionEstimate{Potential: true, NetValueAdd: 28_000},
		Flip:         &model.FinancialScenario{Strategy: model.StrategyFlip, ROI: 18.2},
		Rental:       &model.FinancialScenario{Strategy: model.StrategyRental, GrossYield: 5.3},
		Decision: &model.StrategyDecision{
			Recommended: "FLIP_WITH_SUBDIVISION",
			FlipROI:     18.2,
			RentalYield: 5.3,
		},
		Score: &model.CompositeScore{
			Score:           score,
			Verdict:         model.VerdictBuy,
			Components:      model.ComponentScores{ROI: 61, Timeline: 100, Confidence: 55, Subdivision: 28, Location: 35, Insurability: 90},
			ConfidenceLevel: "MEDIUM",
			Flags:           []string{"thin comparable data"},
		},
	}
	require.NoError(t, st.SaveAnalysis(ctx, a))
	require.NoError(t, st.UpdateRanks(ctx, map[string]int{id: rank}))
}

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	seedScored(t, st, "e1", "5 Surrey St", 68.4, 1)
	seedScored(t, st, "e2", "18 Forbury Rd", 51.0, 2)

	path := filepath.Join(t.TempDir(), "deals.xlsx")
	require.NoError(t, NewExporter(st).ExportXLSX(ctx, path, 0))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	summary := f.Sheets[0]
	assert.Equal(t, "Ranked Deals", summary.Name)
	require.GreaterOrEqual(t, len(summary.Rows), 3)
	assert.Equal(t, "Rank", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "Address", summary.Rows[0].Cells[1].String())

	// Rows follow rank order.
	assert.Equal(t, "1", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "5 Surrey St", summary.Rows[1].Cells[1].String())
	assert.Equal(t, "$420,000", summary.Rows[1].Cells[4].String())
	assert.Equal(t, "BUY", summary.Rows[1].Cells[6].String())
	assert.Equal(t, "FLIP_WITH_SUBDIVISION", summary.Rows[1].Cells[7].String())
	assert.Equal(t, "$610,000", summary.Rows[1].Cells[10].String())
	assert.Equal(t, "thin comparable data", summary.Rows[1].Cells[16].String())

	assert.Equal(t, "18 Forbury Rd", summary.Rows[2].Cells[1].String())

	components := f.Sheets[1]
	assert.Equal(t, "Score Components", components.Name)
	require.GreaterOrEqual(t, len(components.Rows), 3)
	assert.Equal(t, "5 Surrey St", components.Rows[1].Cells[1].String())
}

func TestExportXLSXEmptyStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	err = NewExporter(st).ExportXLSX(ctx, filepath.Join(t.TempDir(), "deals.xlsx"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scored analyses")
}
