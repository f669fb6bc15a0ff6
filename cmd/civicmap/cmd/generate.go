package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/civicdatadog/civicmap/internal/tools/site"
	"github.com/civicdatadog/civicmap/internal/tools/sitemap"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	GroupID: "pipeline",
	Short:   "Generate site artifacts",
	Long:    `Generate builds the static site artifacts: provider pages and sitemaps.`,
}

var pagesFlags struct {
	input   string
	outDir  string
	baseURL string
	perPage int
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Generate provider detail pages and the directory",
	Long: `Pages renders one HTML detail page per provider plus the paginated
provider directory, using the site's existing HTML structure.`,
	Example: `  civicmap generate pages
  civicmap generate pages --input data/mn_ccap_providers_enriched.csv --per-page 50`,
	RunE: runPages,
}

var sitemapFlags struct {
	root     string
	baseURL  string
	maxBytes int
	maxURLs  int
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Generate sitemap XML files and the sitemap index",
	Long: `Sitemap scans the site root for HTML pages and writes chunked
sitemap-N.xml files plus a sitemap.xml index, within the sitemaps.org
size limits.`,
	Example: `  civicmap generate sitemap
  civicmap generate sitemap --root ./public --base-url https://civicdatadog.com`,
	RunE: runSitemap,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.AddCommand(pagesCmd)
	generateCmd.AddCommand(sitemapCmd)

	pagesCmd.Flags().StringVarP(&pagesFlags.input, "input", "i", "data/mn_ccap_providers_enriched.csv",
		"Providers CSV to render")
	pagesCmd.Flags().StringVar(&pagesFlags.outDir, "out-dir", filepath.Join("providers", "mn"),
		"Directory to write provider pages")
	pagesCmd.Flags().StringVar(&pagesFlags.baseURL, "base-url", constants.DefaultBaseURL,
		"Absolute site root for canonical URLs")
	pagesCmd.Flags().IntVar(&pagesFlags.perPage, "per-page", constants.DefaultPerPage,
		"Providers per directory page")

	sitemapCmd.Flags().StringVar(&sitemapFlags.root, "root", ".",
		"Site root directory to scan")
	sitemapCmd.Flags().StringVar(&sitemapFlags.baseURL, "base-url", constants.DefaultBaseURL,
		"Base URL for sitemap entries")
	sitemapCmd.Flags().IntVar(&sitemapFlags.maxBytes, "max-bytes", constants.SitemapMaxBytes,
		"Max bytes per sitemap file")
	sitemapCmd.Flags().IntVar(&sitemapFlags.maxURLs, "max-urls", constants.SitemapMaxURLs,
		"Max URLs per sitemap file")
}

func runPages(cmd *cobra.Command, _ []string) error {
	reg, err := registry.ReadFile(pagesFlags.input)
	if err != nil {
		return err
	}

	g, err := site.New(
		site.WithOutputDir(pagesFlags.outDir),
		site.WithBaseURL(pagesFlags.baseURL),
		site.WithPerPage(pagesFlags.perPage),
	)
	if err != nil {
		return err
	}
	if err := g.Generate(cmd.Context(), reg); err != nil {
		return err
	}

	if !globalFlags.Quiet {
		fmt.Printf("Wrote %d provider pages to %s\n", reg.Len(), pagesFlags.outDir)
	}
	return nil
}

func runSitemap(cmd *cobra.Command, _ []string) error {
	g := sitemap.New(
		sitemap.WithRoot(sitemapFlags.root),
		sitemap.WithBaseURL(sitemapFlags.baseURL),
		sitemap.WithMaxBytes(sitemapFlags.maxBytes),
		sitemap.WithMaxURLs(sitemapFlags.maxURLs),
	)
	written, err := g.Generate(cmd.Context())
	if err != nil {
		return err
	}

	if !globalFlags.Quiet {
		fmt.Printf("Wrote %d sitemap files to %s\n", len(written), sitemapFlags.root)
	}
	return nil
}
