package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicdatadog/civicmap/internal/config"
	"github.com/civicdatadog/civicmap/internal/sources/dhs"
	"github.com/civicdatadog/civicmap/internal/sources/local"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
	"github.com/civicdatadog/civicmap/pkg/sources"
)

var fetchFlags struct {
	source   string
	url      string
	har      string
	zips     string
	htmlFile string
	rawFile  string
	rawDir   string
	out      string
	columns  string
	sleep    time.Duration
	timeout  time.Duration
	limit    int
	htmlMode bool
}

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	GroupID: "pipeline",
	Short:   "Download and normalize provider records",
	Long: `Fetch downloads licensed provider records from the DHS licensing site
and writes the normalized CSV.

Sources:
  dhs_export  direct CSV export, from --url or a --har capture
  dhs_batch   per-ZIP export postback replay (--har and --zips)
  dhs_html    parse a saved results page (--html-file)
  local_csv   normalize a raw CSV already on disk (--raw-file)`,
	Example: `  civicmap fetch --har export.har
  civicmap fetch --source dhs_batch --har export.har --zips zips.txt
  civicmap fetch --source local_csv --raw-file data/mn_ccap_raw.csv`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchFlags.source, "source", "s", sources.DHSExportID.String(),
		"Source to fetch from: dhs_export, dhs_batch, dhs_html, local_csv")
	fetchCmd.Flags().StringVar(&fetchFlags.url, "url", "",
		"Direct CSV export URL")
	fetchCmd.Flags().StringVar(&fetchFlags.har, "har", "",
		"HAR capture of the export request")
	fetchCmd.Flags().StringVar(&fetchFlags.zips, "zips", "",
		"Newline-delimited ZIP code list for batch mode")
	fetchCmd.Flags().StringVar(&fetchFlags.htmlFile, "html-file", "",
		"Saved results page to parse")
	fetchCmd.Flags().StringVar(&fetchFlags.rawFile, "raw-file", "",
		"Raw CSV export to normalize offline")
	fetchCmd.Flags().StringVar(&fetchFlags.rawDir, "raw-dir", "data",
		"Directory for raw download artifacts")
	fetchCmd.Flags().StringVar(&fetchFlags.out, "out", "data/mn_ccap_providers.csv",
		"Normalized CSV output path")
	fetchCmd.Flags().StringVar(&fetchFlags.columns, "columns", "",
		"YAML file with extra raw-header to field mappings")
	fetchCmd.Flags().DurationVar(&fetchFlags.sleep, "sleep", constants.DefaultBatchSleep,
		"Pause between ZIP batches")
	fetchCmd.Flags().DurationVar(&fetchFlags.timeout, "timeout", constants.DefaultHTTPTimeout,
		"HTTP request timeout")
	fetchCmd.Flags().IntVar(&fetchFlags.limit, "limit", 0,
		"Limit number of records (0 = no limit)")
	fetchCmd.Flags().BoolVar(&fetchFlags.htmlMode, "html", false,
		"Batch mode: scrape results pages instead of replaying the CSV export")
}

// newSources registers every known source implementation.
func newSources(columns registry.ColumnMap) *sources.Sources {
	srcs := sources.NewSources()
	srcs.Set(sources.DHSExportID, dhs.NewExportSource(columns))
	srcs.Set(sources.DHSBatchID, dhs.NewBatchSource(columns))
	srcs.Set(sources.DHSHTMLID, dhs.NewHTMLSource(columns))
	srcs.Set(sources.LocalCSVID, local.New(columns))
	return srcs
}

func runFetch(cmd *cobra.Command, _ []string) error {
	var columns registry.ColumnMap
	if fetchFlags.columns != "" {
		var err error
		if columns, err = config.LoadColumnMap(fetchFlags.columns); err != nil {
			return err
		}
	}

	src, found := newSources(columns).Get(sources.ID(fetchFlags.source))
	if !found {
		return errors.NewValidationError("source", fetchFlags.source, "unknown source")
	}
	defer func() {
		if err := src.Cleanup(); err != nil {
			logging.Warn().Err(err).Msg("Source cleanup failed")
		}
	}()

	err := src.Fetch(cmd.Context(),
		sources.WithExportURL(fetchFlags.url),
		sources.WithHARFile(fetchFlags.har),
		sources.WithZipCodes(fetchFlags.zips),
		sources.WithHTMLFile(fetchFlags.htmlFile),
		sources.WithRawFile(fetchFlags.rawFile),
		sources.WithRawDir(fetchFlags.rawDir),
		sources.WithSleep(fetchFlags.sleep),
		sources.WithTimeout(fetchFlags.timeout),
		sources.WithLimit(fetchFlags.limit),
		sources.WithHTMLMode(fetchFlags.htmlMode),
	)
	if err != nil {
		return err
	}

	reg := src.Registry()
	if err := reg.WriteFile(fetchFlags.out); err != nil {
		return err
	}

	if !globalFlags.Quiet {
		fmt.Printf("Wrote %d providers to %s\n", reg.Len(), fetchFlags.out)
	}
	return nil
}
