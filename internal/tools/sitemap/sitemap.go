// Package sitemap generates sitemaps.org XML for the static site: every
// HTML page becomes a URL entry, chunked under the protocol's 50MB /
// 50,000-URL limits, with a sitemap index tying the chunks together.
package sitemap

import (
	"context"
	"encoding/xml"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Directory names never included in sitemaps.
var skippedDirs = map[string]bool{
	".git":         true,
	".venv":        true,
	"data":         true,
	"node_modules": true,
}

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type sitemapRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// Generator scans a site root for HTML pages and writes chunked
// sitemap-N.xml files plus a sitemap.xml index.
type Generator struct {
	root     string
	baseURL  string
	maxBytes int
	maxURLs  int
}

// Option is a functional option for configuring the Generator.
type Option func(*Generator)

// WithRoot sets the site root directory to scan.
func WithRoot(root string) Option {
	return func(g *Generator) { g.root = root }
}

// WithBaseURL sets the absolute URL prefix for sitemap entries.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) { g.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithMaxBytes overrides the per-file byte budget.
func WithMaxBytes(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxBytes = n
		}
	}
}

// WithMaxURLs overrides the per-file URL budget.
func WithMaxURLs(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxURLs = n
		}
	}
}

// New creates a sitemap generator rooted at the current directory.
func New(opts ...Option) *Generator {
	g := &Generator{
		root:     ".",
		baseURL:  constants.DefaultBaseURL,
		maxBytes: constants.SitemapMaxBytes,
		maxURLs:  constants.SitemapMaxURLs,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate scans the root, writes the chunked sitemaps and the index,
// and returns the paths of the files it wrote.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	urls, err := g.collectURLs(ctx)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, errors.NewNotFoundError("html files", g.root)
	}

	var written []string
	var chunk []string
	chunkBytes := 0
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		name := "sitemap-" + strconv.Itoa(len(written)+1) + ".xml"
		if err := g.writeURLSet(filepath.Join(g.root, name), chunk); err != nil {
			return err
		}
		written = append(written, name)
		chunk = nil
		chunkBytes = 0
		return nil
	}

	for _, u := range urls {
		entrySize := len(entryXML(u))
		if len(chunk) > 0 && (chunkBytes+entrySize > g.maxBytes || len(chunk) >= g.maxURLs) {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		chunk = append(chunk, u)
		chunkBytes += entrySize
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := g.writeIndex(filepath.Join(g.root, "sitemap.xml"), written); err != nil {
		return nil, err
	}
	written = append(written, "sitemap.xml")

	logging.Info().
		Int("urls", len(urls)).
		Int("files", len(written)).
		Str("root", g.root).
		Msg("Generated sitemaps")
	return written, nil
}

// collectURLs walks the root and returns the sorted, deduplicated page
// URLs. index.html pages collapse to their directory URL.
func (g *Generator) collectURLs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != g.root && skippedDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".html" && ext != ".htm" {
			return nil
		}
		if strings.HasPrefix(d.Name(), "sitemap") {
			return nil
		}

		rel, err := filepath.Rel(g.root, path)
		if err != nil {
			return err
		}
		seen[g.pageURL(filepath.ToSlash(rel))] = true
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("scan", g.root, err)
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

func (g *Generator) pageURL(rel string) string {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	if name == "index.html" || name == "index.htm" {
		parent := strings.TrimSuffix(rel, name)
		if parent == "" {
			return g.baseURL + "/"
		}
		return g.baseURL + "/" + parent
	}
	return g.baseURL + "/" + rel
}

func (g *Generator) writeURLSet(path string, urls []string) error {
	set := urlset{Xmlns: xmlns}
	for _, u := range urls {
		set.URLs = append(set.URLs, urlEntry{Loc: u})
	}
	return writeXML(path, set)
}

func (g *Generator) writeIndex(path string, names []string) error {
	index := sitemapIndex{Xmlns: xmlns}
	for _, name := range names {
		index.Sitemaps = append(index.Sitemaps, sitemapRef{Loc: g.baseURL + "/" + name})
	}
	return writeXML(path, index)
}

// entryXML sizes a single url entry for chunking purposes.
func entryXML(loc string) string {
	return "  <url>\n    <loc>" + loc + "</loc>\n  </url>\n"
}

func writeXML(path string, v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapParse("xml", path, err)
	}
	body := []byte(xml.Header + string(data) + "\n")
	if err := os.WriteFile(path, body, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
