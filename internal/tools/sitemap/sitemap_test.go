package sitemap

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<!doctype html>"), 0o644))
}

func readURLSet(t *testing.T, path string) urlset {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var set urlset
	require.NoError(t, xml.Unmarshal(data, &set))
	return set
}

func locs(set urlset) []string {
	out := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		out = append(out, u.Loc)
	}
	return out
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html")
	writeFile(t, root, "minnesota.html")
	writeFile(t, root, "providers/mn/index.html")
	writeFile(t, root, "providers/mn/sunshine-child-care-1000123.html")
	writeFile(t, root, "providers/mn/page/2.html")
	// Excluded from the scan entirely.
	writeFile(t, root, "data/raw.html")
	writeFile(t, root, "sitemap-old.html")
	require.NoError(t, os.WriteFile(filepath.Join(root, "style.css"), []byte("body{}"), 0o644))

	g := New(WithRoot(root), WithBaseURL("https://civicdatadog.com/"))
	written, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sitemap-1.xml", "sitemap.xml"}, written)

	set := readURLSet(t, filepath.Join(root, "sitemap-1.xml"))
	assert.Equal(t, xmlns, set.Xmlns)
	assert.Equal(t, []string{
		"https://civicdatadog.com/",
		"https://civicdatadog.com/minnesota.html",
		"https://civicdatadog.com/providers/mn/",
		"https://civicdatadog.com/providers/mn/page/2.html",
		"https://civicdatadog.com/providers/mn/sunshine-child-care-1000123.html",
	}, locs(set))

	data, err := os.ReadFile(filepath.Join(root, "sitemap.xml"))
	require.NoError(t, err)
	var index sitemapIndex
	require.NoError(t, xml.Unmarshal(data, &index))
	require.Len(t, index.Sitemaps, 1)
	assert.Equal(t, "https://civicdatadog.com/sitemap-1.xml", index.Sitemaps[0].Loc)
}

func TestGenerateSplitsOnURLBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.html")
	writeFile(t, root, "b.html")
	writeFile(t, root, "c.html")

	g := New(WithRoot(root), WithMaxURLs(2))
	written, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sitemap-1.xml", "sitemap-2.xml", "sitemap.xml"}, written)

	assert.Len(t, readURLSet(t, filepath.Join(root, "sitemap-1.xml")).URLs, 2)
	assert.Len(t, readURLSet(t, filepath.Join(root, "sitemap-2.xml")).URLs, 1)
}

func TestGenerateSplitsOnByteBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "first-page.html")
	writeFile(t, root, "second-page.html")

	g := New(WithRoot(root), WithMaxBytes(80))
	written, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sitemap-1.xml", "sitemap-2.xml", "sitemap.xml"}, written)
}

func TestGenerateRerunStable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html")

	g := New(WithRoot(root))
	first, err := g.Generate(context.Background())
	require.NoError(t, err)

	// Already-written sitemap files must not show up as pages next run.
	second, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	set := readURLSet(t, filepath.Join(root, "sitemap-1.xml"))
	require.Len(t, set.URLs, 1)
	assert.Equal(t, "https://civicdatadog.com/", set.URLs[0].Loc)
}

func TestGenerateNoHTML(t *testing.T) {
	g := New(WithRoot(t.TempDir()))
	_, err := g.Generate(context.Background())
	assert.Error(t, err)
}
