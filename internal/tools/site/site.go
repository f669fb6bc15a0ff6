// Package site renders the static provider pages served on
// civicdatadog.com: one detail page per provider plus a paginated
// directory, using the site's existing HTML structure.
package site

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Page prefixes back to the site root. Provider pages live two levels
// deep (providers/mn/), paginated directory pages three (providers/mn/page/).
const (
	providerPrefix = "../../"
	pagePrefix     = "../../../"
)

// Generator renders provider pages and the paginated directory.
type Generator struct {
	outputDir string
	baseURL   string
	perPage   int
	tmpl      *template.Template
}

// Option is a functional option for configuring the Generator.
type Option func(*Generator)

// WithOutputDir sets the directory provider pages are written to.
func WithOutputDir(dir string) Option {
	return func(g *Generator) { g.outputDir = dir }
}

// WithBaseURL sets the absolute site root used in canonical URLs.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) { g.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithPerPage sets how many providers each directory page lists.
func WithPerPage(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.perPage = n
		}
	}
}

// New creates a site generator.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		outputDir: filepath.Join("providers", "mn"),
		baseURL:   constants.DefaultBaseURL,
		perPage:   constants.DefaultPerPage,
	}
	for _, opt := range opts {
		opt(g)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.NewConfigError("site", "parse templates", err)
	}
	g.tmpl = tmpl
	return g, nil
}

// meta carries the head metadata every page template needs.
type meta struct {
	Title       string
	Description string
	Canonical   string
	Prefix      string
}

type detailRow struct {
	Label string
	Value string
}

type providerPage struct {
	meta
	Name     string
	Details  []detailRow
	MapsLink string
}

type directoryItem struct {
	Href  string
	Label string
}

type directoryPage struct {
	meta
	Items      []directoryItem
	PageNum    int
	TotalPages int
	PrevHref   string
	NextHref   string
}

// Generate writes one detail page per provider, the directory index and
// its paginated variants under the output directory.
func (g *Generator) Generate(ctx context.Context, reg *registry.Registry) error {
	providers := reg.List()
	if len(providers) == 0 {
		return errors.NewValidationError("registry", nil, "no providers to generate")
	}

	pageDir := filepath.Join(g.outputDir, "page")
	if err := os.MkdirAll(pageDir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", pageDir, err)
	}

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.writeProviderPage(p); err != nil {
			return err
		}
	}

	totalPages := (len(providers) + g.perPage - 1) / g.perPage
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		start := (pageNum - 1) * g.perPage
		end := min(start+g.perPage, len(providers))
		path := filepath.Join(pageDir, pageName(pageNum))
		canonical := g.baseURL + "/providers/mn/page/" + pageName(pageNum)
		if err := g.writeDirectoryPage(path, providers[start:end], pagePrefix, "../", pageNum, totalPages, canonical); err != nil {
			return err
		}
	}

	// index.html mirrors page 1, addressed from the directory itself.
	indexPath := filepath.Join(g.outputDir, "index.html")
	first := providers[:min(g.perPage, len(providers))]
	if err := g.writeDirectoryPage(indexPath, first, providerPrefix, "", 1, totalPages, g.baseURL+"/providers/mn/index.html"); err != nil {
		return err
	}

	logging.Info().
		Int("providers", len(providers)).
		Int("pages", totalPages).
		Str("dir", g.outputDir).
		Msg("Generated provider pages")
	return nil
}

func (g *Generator) writeProviderPage(p *registry.Provider) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Provider"
	}

	data := providerPage{
		meta: meta{
			Title:       name + " - Minnesota Child Care Provider | Civic Datadog",
			Description: "Details for " + name + " in Minnesota.",
			Canonical:   g.baseURL + "/providers/mn/" + p.Slug + ".html",
			Prefix:      providerPrefix,
		},
		Name:     name,
		MapsLink: mapsLink(p),
	}

	for _, row := range []detailRow{
		{"License number", p.LicenseNumber},
		{"License type", p.LicenseType},
		{"Status", p.Status},
		{"Address", p.Address},
		{"City", p.City},
		{"State", p.State},
		{"ZIP", p.Zip},
		{"County", p.County},
		{"Phone", p.Phone()},
		{"Website", p.Website()},
	} {
		if row.Value != "" {
			data.Details = append(data.Details, row)
		}
	}

	return g.render(filepath.Join(g.outputDir, p.Slug+".html"), "provider.tmpl", data)
}

func (g *Generator) writeDirectoryPage(path string, providers []*registry.Provider, prefix, itemPrefix string, pageNum, totalPages int, canonical string) error {
	data := directoryPage{
		meta: meta{
			Title:       "Minnesota Child Care Providers Directory | Civic Datadog",
			Description: "Directory of Minnesota child care providers (CCAP) with detail pages.",
			Canonical:   canonical,
			Prefix:      prefix,
		},
		PageNum:    pageNum,
		TotalPages: totalPages,
	}

	for _, p := range providers {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "Provider"
		}
		label := name
		if parts := joinNonEmpty(", ", p.City, p.Zip); parts != "" {
			label = name + " (" + parts + ")"
		}
		data.Items = append(data.Items, directoryItem{
			Href:  itemPrefix + p.Slug + ".html",
			Label: label,
		})
	}

	if totalPages > 1 {
		if pageNum > 1 {
			data.PrevHref = prefix + "providers/mn/page/" + pageName(pageNum-1)
		}
		if pageNum < totalPages {
			data.NextHref = prefix + "providers/mn/page/" + pageName(pageNum+1)
		}
	}

	return g.render(path, "directory.tmpl", data)
}

func (g *Generator) render(path, name string, data any) error {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return errors.NewConfigError("site", "render "+name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// mapsLink builds the Google Maps search link for a provider address.
func mapsLink(p *registry.Provider) string {
	query := p.MapsQuery()
	if query == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + strings.ReplaceAll(query, " ", "+")
}

func pageName(n int) string {
	return strconv.Itoa(n) + ".html"
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
