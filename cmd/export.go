package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harbourstone/dealscout/internal/report"
)

var (
	exportOut   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranked analyses to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := report.NewExporter(st).ExportXLSX(ctx, exportOut, exportLimit); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "dealscout.xlsx", "output workbook path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "cap the number of analyses exported")
	rootCmd.AddCommand(exportCmd)
}
