package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/harbourstone/dealscout/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import scraped listings from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		listings, err := readListings(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		for i := range listings {
			if err := st.SaveListing(ctx, &listings[i]); err != nil {
				return fmt.Errorf("save listing %q: %w", listings[i].Address, err)
			}
		}

		zap.L().Info("import: complete", zap.Int("listings", len(listings)))
		fmt.Printf("Imported %d listings\n", len(listings))
		return nil
	},
}

// readListings accepts YAML or JSON. YAML documents pass through a JSON
// round trip so the model's json tags decide the field names in both formats.
func readListings(path string) ([]model.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		var raw []map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		data, err = json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
	}

	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("%s contains no listings", path)
	}
	return listings, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
