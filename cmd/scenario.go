package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harbourstone/dealscout/internal/pipeline"
)

var scenarioAdj pipeline.Adjustments

var scenarioCmd = &cobra.Command{
	Use:   "scenario <listing-id>",
	Short: "Recompute the financial models with what-if overrides",
	Long:  "Reruns the flip and rental models for an analyzed listing with overridden inputs. Nothing is persisted; the stored analysis keeps its estimated figures.",
	Args:  cobra.ExactArgs(1),
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

		res, err := o.Scenario(ctx, args[0], scenarioAdj)
		if err != nil {
			return err
		}

		fmt.Printf("Scenario for %s\n", res.ListingID)
		fmt.Printf("  Purchase:  $%.0f   Renovation: $%.0f   ARV: $%.0f\n",
			res.Inputs.PurchasePrice, res.Inputs.RenovationCost, res.Inputs.ARV)
		fmt.Printf("  Flip:      net $%.0f, ROI %.1f%% over %d weeks\n",
			res.Flip.NetProfit, res.Flip.ROI, res.Flip.TimelineWeeks)
		fmt.Printf("  Rental:    cashflow $%.0f/yr, gross yield %.1f%%\n",
			res.Rental.AnnualCashflow, res.Rental.GrossYield)
		fmt.Printf("  Decision:  %s (%s)\n", res.Decision.Recommended, res.Decision.Reason)
		return nil
	},
}

func init() {
	scenarioCmd.Flags().Float64Var(&scenarioAdj.PurchasePrice, "purchase-price", 0, "override purchase price")
	scenarioCmd.Flags().Float64Var(&scenarioAdj.RenovationCost, "reno-cost", 0, "override renovation cost")
	scenarioCmd.Flags().Float64Var(&scenarioAdj.ARV, "arv", 0, "override after-repair value")
	scenarioCmd.Flags().Float64Var(&scenarioAdj.WeeklyRent, "weekly-rent", 0, "override weekly rent")
	scenarioCmd.Flags().IntVar(&scenarioAdj.TimelineWeeks, "weeks", 0, "override renovation timeline in weeks")
	scenarioCmd.Flags().Float64Var(&scenarioAdj.FlipInterestRate, "flip-rate", 0, "override flip interest rate (e.g. 0.065)")
	scenarioCmd.Flags().Float64Var(&scenarioAdj.HoldInterestRate, "hold-rate", 0, "override hold interest rate (e.g. 0.055)")
	rootCmd.AddCommand(scenarioCmd)
}
