package dhs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadResultsPage(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "results.html"))
	require.NoError(t, err)
	return string(data)
}

func TestParseResultsPage(t *testing.T) {
	providers := ParseResultsPage(loadResultsPage(t))
	require.Len(t, providers, 2)

	first := providers[0]
	assert.Equal(t, "Sunshine Child Care Center", first.Name)
	assert.Equal(t, "Active", first.Status)
	assert.Equal(t, "123 Main St", first.Address)
	assert.Equal(t, "Saint Paul", first.City)
	assert.Equal(t, "MN", first.State)
	assert.Equal(t, "55101", first.Zip)
	assert.Equal(t, "Ramsey", first.County)
	assert.Equal(t, "1000123", first.LicenseNumber)
	assert.Equal(t, "Child Care Center", first.LicenseType)

	second := providers[1]
	assert.Equal(t, "Johnson Family Child Care & Preschool", second.Name)
	assert.Equal(t, "1000456", second.LicenseNumber)
	assert.Equal(t, "Hennepin", second.County)
	assert.Equal(t, "Family Child Care", second.LicenseType)
}

func TestParseResultsPageEmpty(t *testing.T) {
	providers := ParseResultsPage(`<!DOCTYPE html><html><body>No results found</body></html>`)
	assert.Empty(t, providers)
}

func TestCleanBlock(t *testing.T) {
	lines := cleanBlock(`  123 Main St<br/>Saint&nbsp;Paul, MN 55101<BR>  <span>Ramsey County</span>  `)
	require.Len(t, lines, 3)
	assert.Equal(t, "123 Main St", lines[0])
	assert.Equal(t, "Saint Paul, MN 55101", lines[1])
	assert.Equal(t, "Ramsey County", lines[2])
}
