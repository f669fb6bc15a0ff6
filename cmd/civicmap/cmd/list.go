package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/civicdatadog/civicmap/internal/cmd/globals"
	"github.com/civicdatadog/civicmap/internal/cmd/output"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

var listFlags *globals.RecordFlags

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "data",
	Short:   "List provider records",
	Long:    `List prints provider records from a normalized CSV, with optional filters.`,
	Example: `  civicmap list -i data/mn_ccap_providers.csv
  civicmap list --city "Saint Paul" --enriched -o json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = globals.AddRecordFlags(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	input := listFlags.Input
	if input == "" {
		input = "data/mn_ccap_providers.csv"
	}
	reg, err := registry.ReadFile(input)
	if err != nil {
		return err
	}

	var matched []*registry.Provider
	for _, p := range reg.List() {
		if listFlags.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(listFlags.Search)) {
			continue
		}
		if listFlags.City != "" && !strings.EqualFold(p.City, listFlags.City) {
			continue
		}
		if listFlags.Zip != "" && p.Zip != listFlags.Zip {
			continue
		}
		if listFlags.Enriched && !p.Enriched() {
			continue
		}
		matched = append(matched, p)
		if listFlags.Limit > 0 && len(matched) >= listFlags.Limit {
			break
		}
	}

	return output.FormatProviders(matched, globalFlags)
}
