package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rankLimit int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show the current ranking of analyzed listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		analyses, err := st.ListRanked(ctx, rankLimit)
		if err != nil {
			return err
		}
		if len(analyses) == 0 {
			fmt.Println("No scored analyses yet. Run `dealscout batch` first.")
			return nil
		}

		fmt.Printf("%-5s %-38s %-7s %-12s %-24s\n", "Rank", "Listing", "Score", "Verdict", "Strategy")
		for _, a := range analyses {
			strategy := ""
			if a.Decision != nil {
				strategy = a.Decision.Recommended
			}
			fmt.Printf("%-5d %-38s %-7.1f %-12s %-24s\n",
				a.Rank, a.ListingID, a.Score.Score, a.Score.Verdict, strategy)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankLimit, "limit", 20, "number of listings to show")
	rootCmd.AddCommand(rankCmd)
}
