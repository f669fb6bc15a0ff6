package globals

import "github.com/spf13/cobra"

// RecordFlags holds flags for commands that operate on provider records.
type RecordFlags struct {
	Input    string
	Limit    int
	Search   string
	City     string
	Zip      string
	Enriched bool
}

// AddRecordFlags adds record selection flags to a command.
func AddRecordFlags(cmd *cobra.Command) *RecordFlags {
	flags := &RecordFlags{}

	cmd.Flags().StringVarP(&flags.Input, "input", "i", "",
		"Normalized providers CSV to read")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0,
		"Limit number of results")
	cmd.Flags().StringVar(&flags.Search, "search", "",
		"Filter by provider name substring")
	cmd.Flags().StringVar(&flags.City, "city", "",
		"Filter by city")
	cmd.Flags().StringVar(&flags.Zip, "zip", "",
		"Filter by ZIP code")
	cmd.Flags().BoolVar(&flags.Enriched, "enriched", false,
		"Only records with Places data")

	return flags
}
