package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harbourstone/dealscout/internal/config"
	"github.com/harbourstone/dealscout/internal/lookup"
	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/pipeline"
	"github.com/harbourstone/dealscout/internal/store"
	"github.com/harbourstone/dealscout/pkg/vision"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dealscout",
	Short: "Residential investment deal evaluation pipeline",
	Long:  "Filters scraped property listings, estimates renovation scope and value, models flip and rental scenarios, and ranks the survivors.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildOrchestrator wires the pipeline against the configured collaborators.
// Comparable sales come from the nearby-sales blocks captured with the
// stored listings.
func buildOrchestrator(ctx context.Context, st store.Store) (*pipeline.Orchestrator, error) {
	var visionClient vision.Client
	switch cfg.Vision.Provider {
	case "anthropic":
		visionClient = vision.NewAnthropic(cfg.Vision.Key,
			vision.WithModel(cfg.Vision.Model),
			vision.WithMaxPhotos(cfg.Vision.MaxPhotos),
		)
	default:
		visionClient = vision.NewStatic()
	}

	sales, err := storedSales(ctx, st)
	if err != nil {
		return nil, err
	}

	clients := pipeline.Clients{
		Vision:       visionClient,
		Demographics: lookup.NewStaticDemographics(),
		Comparables:  lookup.NewSliceSales(sales),
		Tenancy:      lookup.NewStaticTenancy(),
		Council:      lookup.NewStaticCouncil(),
		Insurance:    lookup.NewStaticInsurance(),
	}
	return pipeline.New(st, cfg, clients), nil
}

func storedSales(ctx context.Context, st store.Store) ([]model.Sale, error) {
	listings, err := st.ListListings(ctx, store.ListingFilter{Limit: 10_000})
	if err != nil {
		return nil, err
	}
	var sales []model.Sale
	for _, l := range listings {
		sales = append(sales, l.NearbySales...)
	}
	return sales, nil
}
