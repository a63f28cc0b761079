package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harbourstone/dealscout/internal/model"
	"github.com/harbourstone/dealscout/internal/store"
)

var (
	batchSuburb   string
	batchDistrict string
	batchAll      bool
	batchLimit    int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate pending listings and recompute the ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		o, err := buildOrchestrator(ctx, st)
		if err != nil {
			return err
		}

		sel := store.ListingFilter{
			Suburb:   batchSuburb,
			District: batchDistrict,
			Limit:    batchLimit,
		}
		if !batchAll {
			sel.AnalysisStatus = model.AnalysisStatusPending
		}

		res, err := o.RunBatch(ctx, sel)
		if err != nil {
			return err
		}

		fmt.Printf("Batch %s: %d analyzed, %d rejected, %d skipped, %d failed in %dms\n",
			res.BatchID, res.Analyzed, res.Rejected, res.Skipped, res.Failed, res.Duration)
		for _, item := range res.Items {
			switch item.Outcome {
			case model.OutcomeAnalyzed:
				fmt.Printf("  %-12s %s  score %.1f (%s)\n", item.Outcome, item.ListingID, item.Score, item.Verdict)
			default:
				fmt.Printf("  %-12s %s  %s\n", item.Outcome, item.ListingID, item.Reason)
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchSuburb, "suburb", "", "only listings in this suburb")
	batchCmd.Flags().StringVar(&batchDistrict, "district", "", "only listings in this district")
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "re-evaluate every listing, not just pending ones")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "cap the number of listings evaluated")
	rootCmd.AddCommand(batchCmd)
}
