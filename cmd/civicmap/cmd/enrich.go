package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicdatadog/civicmap/internal/config"
	"github.com/civicdatadog/civicmap/internal/enrich"
	"github.com/civicdatadog/civicmap/internal/storage"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

var enrichFlags struct {
	input   string
	out     string
	cache   string
	noCache bool
	sleep   time.Duration
	limit   int
	workers int
}

var enrichCmd = &cobra.Command{
	Use:     "enrich",
	GroupID: "pipeline",
	Short:   "Attach Google Places data to provider records",
	Long: `Enrich looks up each provider on the Google Places API and attaches
website, phone, rating and location data to the normalized CSV.

Results are cached by address in a local SQLite database, so re-running
enrichment only bills lookups for addresses not seen before. The API key
is read from the GOOGLE_API_KEY environment variable or .env file.`,
	Example: `  civicmap enrich
  civicmap enrich --limit 50 --sleep 500ms
  civicmap enrich --no-cache`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVarP(&enrichFlags.input, "input", "i", "data/mn_ccap_providers.csv",
		"Normalized providers CSV to enrich")
	enrichCmd.Flags().StringVar(&enrichFlags.out, "out", "data/mn_ccap_providers_enriched.csv",
		"Enriched CSV output path")
	enrichCmd.Flags().StringVar(&enrichFlags.cache, "cache", "data/places_cache.db",
		"SQLite enrichment cache path")
	enrichCmd.Flags().BoolVar(&enrichFlags.noCache, "no-cache", false,
		"Skip the persistent cache (still dedupes within the run)")
	enrichCmd.Flags().DurationVar(&enrichFlags.sleep, "sleep", constants.DefaultPlacesSleep,
		"Pause between API calls per worker")
	enrichCmd.Flags().IntVar(&enrichFlags.limit, "limit", 0,
		"Limit number of records (0 = no limit)")
	enrichCmd.Flags().IntVar(&enrichFlags.workers, "workers", constants.MaxEnrichWorkers,
		"Concurrent lookup workers")
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	apiKey, err := config.PlacesAPIKey()
	if err != nil {
		return err
	}

	reg, err := registry.ReadFile(enrichFlags.input)
	if err != nil {
		return err
	}

	client, err := enrich.NewClient(apiKey)
	if err != nil {
		return err
	}

	var cache storage.Cache
	if enrichFlags.noCache {
		cache = storage.NewMemoryCache()
	} else {
		cache, err = storage.NewSQLiteCache(enrichFlags.cache)
		if err != nil {
			return err
		}
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Warn().Err(err).Msg("Cache close failed")
		}
	}()

	enricher := enrich.New(client, cache,
		enrich.WithSleep(enrichFlags.sleep),
		enrich.WithLimit(enrichFlags.limit),
		enrich.WithWorkers(enrichFlags.workers),
	)
	stats, err := enricher.Enrich(cmd.Context(), reg)
	if err != nil {
		return err
	}

	if err := reg.WriteFile(enrichFlags.out); err != nil {
		return err
	}

	if !globalFlags.Quiet {
		fmt.Printf("Enriched %d providers (%d lookups, %d cached, %d no match, %d failed) to %s\n",
			stats.Total, stats.Looked, stats.Cached, stats.NoMatch, stats.Failed, enrichFlags.out)
	}
	return nil
}
