package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harbourstone/dealscout/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <listing-id>",
	Short: "Run the full evaluation pipeline for one listing",
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

		a, err := o.Analyze(ctx, args[0])
		if err != nil {
			return err
		}
		if err := o.Rerank(ctx); err != nil {
			return err
		}

		printAnalysis(a)
		return nil
	},
}

func printAnalysis(a *model.Analysis) {
	if rejected := rejectionOf(a); rejected != "" {
		fmt.Printf("REJECTED: %s\n", rejected)
		return
	}

	fmt.Printf("Listing %s\n", a.ListingID)
	if a.Condition != nil {
		fmt.Printf("  Condition:    %s (source %s)\n", a.Condition.Level, a.Condition.Source)
	}
	if a.Renovation != nil && a.Timeline != nil {
		fmt.Printf("  Renovation:   $%.0f over %d weeks\n", a.Renovation.Total, a.Timeline.Weeks)
	}
	if a.ARV != nil {
		fmt.Printf("  ARV:          $%.0f (confidence %.0f, %d comparables)\n",
			a.ARV.Value, a.ARV.Confidence, a.ARV.ComparablesUsed)
	}
	if a.RentalIncome != nil {
		fmt.Printf("  Weekly rent:  $%.0f\n", a.RentalIncome.WeeklyRent)
	}
	if a.Subdivision != nil && a.Subdivision.Potential {
		fmt.Printf("  Subdivision:  +$%.0f net (%d extra lots)\n",
			a.Subdivision.NetValueAdd, a.Subdivision.ExtraLots)
	}
	if a.Decision != nil {
		fmt.Printf("  Strategy:     %s (flip ROI %.1f%%, yield %.1f%%)\n",
			a.Decision.Recommended, a.Decision.FlipROI, a.Decision.RentalYield)
		if len(a.Decision.Risks) > 0 {
			fmt.Printf("  Risks:        %s\n", strings.Join(a.Decision.Risks, "; "))
		}
	}
	if a.Score != nil {
		fmt.Printf("  Score:        %.1f -> %s (%s confidence)\n",
			a.Score.Score, a.Score.Verdict, a.Score.ConfidenceLevel)
		for _, f := range a.Score.Flags {
			fmt.Printf("  Flag:         %s\n", f)
		}
	}
}

func rejectionOf(a *model.Analysis) string {
	for _, r := range a.FilterResults {
		if r.Verdict == model.FilterReject {
			return r.Reason
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
