// Package output provides common output formatting utilities for CLI commands.
package output

import (
	"os"

	"github.com/civicdatadog/civicmap/internal/cmd/globals"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// FormatProviders handles the common pattern of formatting provider
// records for output.
func FormatProviders(providers []*registry.Provider, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))

	var outputData any
	switch Format(globalFlags.Output) {
	case FormatTable, "":
		outputData = providersToTableData(providers)
	default:
		outputData = providers
	}

	return formatter.Format(os.Stdout, outputData)
}

// FormatAny handles the common pattern of formatting any data type for output.
func FormatAny(data any, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))
	return formatter.Format(os.Stdout, data)
}

func providersToTableData(providers []*registry.Provider) Data {
	data := Data{
		Headers: []string{"License", "Name", "City", "Zip", "Status", "Website"},
	}
	for _, p := range providers {
		data.Rows = append(data.Rows, []string{
			p.LicenseNumber,
			p.Name,
			p.City,
			p.Zip,
			p.Status,
			p.Website(),
		})
	}
	return data
}
