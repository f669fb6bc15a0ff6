// Package dhs fetches and normalizes licensed child care providers from
// the Minnesota DHS Licensing Information Lookup. It prefers the official
// CSV export over HTML scraping, replays browser-captured export requests
// from HAR files, and is deliberately polite: one request at a time, with
// a sleep between ZIP batches.
package dhs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/civicdatadog/civicmap/internal/transport"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
	"github.com/civicdatadog/civicmap/pkg/sources"
)

// core carries the state shared by the DHS source variants.
type core struct {
	columns registry.ColumnMap
	reg     *registry.Registry
}

func newCore(columns registry.ColumnMap) core {
	if columns == nil {
		columns = registry.DefaultColumnMap()
	}
	return core{columns: columns, reg: registry.New()}
}

// Registry returns the records fetched by this source.
func (c *core) Registry() *registry.Registry { return c.reg }

// Cleanup implements sources.Source. DHS sources hold no resources.
func (c *core) Cleanup() error { return nil }

// collect normalizes and stores providers, honoring the record limit.
func (c *core) collect(providers []registry.Provider, limit int) {
	for _, p := range providers {
		if limit > 0 && c.reg.Len() >= limit {
			return
		}
		c.reg.Add(p)
	}
}

// ExportSource downloads the official CSV export directly, either from a
// known export URL or by replaying a HAR-captured request.
type ExportSource struct {
	core
}

// NewExportSource creates a direct-export source.
func NewExportSource(columns registry.ColumnMap) *ExportSource {
	return &ExportSource{core: newCore(columns)}
}

// ID implements sources.Source.
func (s *ExportSource) ID() sources.ID { return sources.DHSExportID }

// Fetch downloads and normalizes the CSV export.
func (s *ExportSource) Fetch(ctx context.Context, opts ...sources.Option) error {
	options := sources.NewFetchOptions(opts...)
	if err := options.Validate(); err != nil {
		return err
	}

	s.reg = registry.New()

	var body string
	switch {
	case options.HARFile != "":
		export, err := LoadExport(options.HARFile)
		if err != nil {
			return errors.NewFetchError(s.ID().String(), nil, err)
		}
		logging.Info().
			Str("method", export.Method).
			Str("url", export.URL).
			Msg("Replaying HAR export request")

		client := transport.New(
			transport.WithTimeout(options.Timeout),
			transport.WithHeaders(export.Headers),
			transport.WithCookies(export.Cookies),
		)
		body, err = client.Request(ctx, s.ID().String(), export.Method, export.URL, export.Body)
		if err != nil {
			return errors.NewFetchError(s.ID().String(), nil, err)
		}

	case options.ExportURL != "":
		client := transport.New(
			transport.WithTimeout(options.Timeout),
			transport.WithHeaders(map[string]string{
				"Accept": "text/csv,application/octet-stream;q=0.9,*/*;q=0.8",
			}),
		)
		var err error
		body, err = client.GetBody(ctx, s.ID().String(), options.ExportURL)
		if err != nil {
			return errors.NewFetchError(s.ID().String(), nil, err)
		}

	default:
		return errors.NewConfigError("fetch", "export source needs --url or --har", nil)
	}

	if err := writeRaw(options.RawDir, "mn_ccap_raw.csv", body); err != nil {
		return err
	}

	providers, err := ParseRawCSV(body, s.columns)
	if err != nil {
		return errors.NewFetchError(s.ID().String(), nil, err)
	}
	s.collect(providers, options.Limit)

	logging.Info().
		Int("records", s.reg.Len()).
		Msg("Normalized provider export")
	return nil
}

// BatchSource replays the export form once per ZIP code, reusing the
// session headers and cookies captured in a HAR file.
type BatchSource struct {
	core
}

// NewBatchSource creates a per-ZIP batch source.
func NewBatchSource(columns registry.ColumnMap) *BatchSource {
	return &BatchSource{core: newCore(columns)}
}

// ID implements sources.Source.
func (s *BatchSource) ID() sources.ID { return sources.DHSBatchID }

// Fetch walks the ZIP list, exporting one batch per ZIP. Individual ZIP
// failures are logged and skipped; the fetch fails only when no ZIP
// succeeds.
func (s *BatchSource) Fetch(ctx context.Context, opts ...sources.Option) error {
	options := sources.NewFetchOptions(opts...)
	if err := options.Validate(); err != nil {
		return err
	}
	if options.HARFile == "" || options.ZipsFile == "" {
		return errors.NewConfigError("fetch", "batch mode needs --har and --zips", nil)
	}

	export, err := LoadExport(options.HARFile)
	if err != nil {
		return errors.NewFetchError(s.ID().String(), nil, err)
	}
	if !options.HTMLMode && export.Method != "POST" {
		return errors.NewConfigError("fetch", "expected POST export request in HAR, got "+export.Method, nil)
	}

	zips, err := readZips(options.ZipsFile)
	if err != nil {
		return err
	}

	client := transport.New(
		transport.WithTimeout(options.Timeout),
		transport.WithHeaders(export.Headers),
		transport.WithCookies(export.Cookies),
	)

	s.reg = registry.New()
	var failed []string
	for i, zip := range zips {
		if options.Limit > 0 && s.reg.Len() >= options.Limit {
			break
		}

		logging.Info().
			Str("zip", zip).
			Int("index", i+1).
			Int("total", len(zips)).
			Msg("Exporting ZIP batch")

		providers, err := s.fetchZip(ctx, client, export.URL, zip, options)
		if err != nil {
			logging.Error().Err(err).Str("zip", zip).Msg("ZIP export failed")
			failed = append(failed, zip)
		} else {
			s.collect(providers, options.Limit)
		}

		if i < len(zips)-1 && options.Sleep > 0 {
			select {
			case <-ctx.Done():
				return errors.NewFetchError(s.ID().String(), failed, ctx.Err())
			case <-time.After(options.Sleep):
			}
		}
	}

	if s.reg.Len() == 0 && len(failed) > 0 {
		return errors.NewFetchError(s.ID().String(), failed, errors.ErrSourceUnavailable)
	}

	logging.Info().
		Int("records", s.reg.Len()).
		Int("failed_zips", len(failed)).
		Msg("ZIP batch complete")
	return nil
}

// fetchZip downloads and normalizes a single ZIP batch.
func (s *BatchSource) fetchZip(ctx context.Context, client *transport.Client, baseURL, zip string, options *sources.FetchOptions) ([]registry.Provider, error) {
	zipURL, err := urlWithZip(baseURL, zip)
	if err != nil {
		return nil, err
	}

	page, err := client.GetBody(ctx, s.ID().String(), zipURL)
	if err != nil {
		return nil, err
	}

	if options.HTMLMode {
		if !isHTMLDocument(page) {
			return nil, errors.NewParseError("html", zipURL, "response is not an HTML document", nil)
		}
		if err := writeRaw(options.RawDir, "mn_ccap_raw_"+zip+".html", page); err != nil {
			return nil, err
		}
		return ParseResultsPage(page), nil
	}

	fields := extractHiddenFields(page)
	if !fields.valid() {
		return nil, errors.NewParseError("html", zipURL, "missing hidden fields required for export", nil)
	}

	body, err := client.PostForm(ctx, s.ID().String(), zipURL, fields.exportForm())
	if err != nil {
		return nil, err
	}
	if err := writeRaw(options.RawDir, "mn_ccap_raw_"+zip+".csv", body); err != nil {
		return nil, err
	}

	return ParseRawCSV(body, s.columns)
}

// HTMLSource parses a results page saved to disk.
type HTMLSource struct {
	core
}

// NewHTMLSource creates a saved-results-page source.
func NewHTMLSource(columns registry.ColumnMap) *HTMLSource {
	return &HTMLSource{core: newCore(columns)}
}

// ID implements sources.Source.
func (s *HTMLSource) ID() sources.ID { return sources.DHSHTMLID }

// Fetch parses the saved results page named in the options.
func (s *HTMLSource) Fetch(_ context.Context, opts ...sources.Option) error {
	options := sources.NewFetchOptions(opts...)
	if err := options.Validate(); err != nil {
		return err
	}
	if options.HTMLFile == "" {
		return errors.NewConfigError("fetch", "html source needs --html-file", nil)
	}

	data, err := os.ReadFile(options.HTMLFile)
	if err != nil {
		return errors.WrapIO("read", options.HTMLFile, err)
	}

	s.reg = registry.New()
	s.collect(ParseResultsPage(string(data)), options.Limit)

	logging.Info().
		Str("file", options.HTMLFile).
		Int("records", s.reg.Len()).
		Msg("Parsed saved results page")
	return nil
}

// readZips loads a newline-delimited ZIP code list.
func readZips(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var zips []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			zips = append(zips, line)
		}
	}
	if len(zips) == 0 {
		return nil, errors.NewValidationError("zips", path, "no ZIP codes found")
	}
	return zips, nil
}

// writeRaw stores a raw download artifact for inspection and reuse.
func writeRaw(dir, name, body string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
