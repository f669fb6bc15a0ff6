package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

func writeColumns(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadColumnMap(t *testing.T) {
	path := writeColumns(t, `columns:
  "Lic No": license_number
  "Facility Name": provider_name
`)

	m, err := LoadColumnMap(path)
	require.NoError(t, err)

	// Overrides apply on top of the defaults.
	assert.Equal(t, "license_number", m["Lic No"])
	assert.Equal(t, "provider_name", m["Facility Name"])
	assert.Equal(t, "license_number", m["License #"])
}

func TestLoadColumnMapUnknownField(t *testing.T) {
	path := writeColumns(t, `columns:
  "Lic No": licence_num
`)

	_, err := LoadColumnMap(path)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadColumnMapEmpty(t *testing.T) {
	path := writeColumns(t, "columns: {}\n")

	_, err := LoadColumnMap(path)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadColumnMapMissingFile(t *testing.T) {
	_, err := LoadColumnMap(filepath.Join(t.TempDir(), "absent.yaml"))

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadColumnMapBadYAML(t *testing.T) {
	path := writeColumns(t, "columns: [not a map")

	_, err := LoadColumnMap(path)
	assert.Error(t, err)
}
