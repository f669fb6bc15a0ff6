package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civicdatadog/civicmap/internal/cmd/output"
	"github.com/civicdatadog/civicmap/internal/validation"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

var validateFlags struct {
	input  string
	warns  bool
	strict bool
}

var validateCmd = &cobra.Command{
	Use:     "validate",
	GroupID: "data",
	Short:   "Check provider records for data problems",
	Long: `Validate checks a normalized CSV for problems that break page
generation or mislead readers: missing names, malformed state or ZIP
values, and duplicate license numbers. Issues are reported; with
--strict, errors also fail the command.`,
	Example: `  civicmap validate -i data/mn_ccap_providers.csv
  civicmap validate --warnings
  civicmap validate --strict`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.input, "input", "i", "data/mn_ccap_providers.csv",
		"Normalized providers CSV to validate")
	validateCmd.Flags().BoolVar(&validateFlags.warns, "warnings", false,
		"Show warnings as well as errors")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false,
		"Exit non-zero when any error is found")
}

func runValidate(_ *cobra.Command, _ []string) error {
	reg, err := registry.ReadFile(validateFlags.input)
	if err != nil {
		return err
	}

	report := validation.Validate(reg)

	type issueRow struct {
		Severity string `json:"severity"`
		Slug     string `json:"slug"`
		Field    string `json:"field"`
		Message  string `json:"message"`
	}
	var rows []issueRow
	for _, issue := range report.Errors {
		rows = append(rows, issueRow{"error", issue.Slug, issue.Field, issue.Message})
	}
	if validateFlags.warns {
		for _, issue := range report.Warns {
			rows = append(rows, issueRow{"warning", issue.Slug, issue.Field, issue.Message})
		}
	}
	if len(rows) > 0 {
		if err := output.FormatAny(rows, globalFlags); err != nil {
			return err
		}
	}

	if !globalFlags.Quiet {
		fmt.Printf("Checked %d records: %d errors, %d warnings\n",
			report.Records, len(report.Errors), len(report.Warns))
	}
	if validateFlags.strict && !report.Valid() {
		return errors.NewValidationError("registry", validateFlags.input,
			fmt.Sprintf("%d validation errors", len(report.Errors)))
	}
	return nil
}
