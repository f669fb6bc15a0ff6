package dhs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

func TestParseRawCSV(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "raw.csv"))
	require.NoError(t, err)

	providers, err := ParseRawCSV(string(data), registry.DefaultColumnMap())
	require.NoError(t, err)
	require.Len(t, providers, 3)

	first := providers[0]
	assert.Equal(t, "1000123", first.LicenseNumber)
	assert.Equal(t, "Sunshine Child Care Center", first.Name)
	assert.Equal(t, "Child Care Center", first.LicenseType)
	assert.Equal(t, "Active", first.Status)
	assert.Equal(t, "123 Main St", first.Address)
	assert.Equal(t, "Saint Paul", first.City)
	assert.Equal(t, "MN", first.State)
	assert.Equal(t, "55101", first.Zip)
	assert.Equal(t, "Ramsey", first.County)
	assert.Empty(t, first.DoingBusinessAs)

	assert.Equal(t, "Johnson Family Child Care", providers[1].DoingBusinessAs)
	assert.Equal(t, "Inactive", providers[2].Status)
}

func TestParseRawCSVBotProtection(t *testing.T) {
	body := "<!DOCTYPE html>\n<html><head><title>Just a moment...</title></head></html>"
	_, err := ParseRawCSV(body, registry.DefaultColumnMap())
	require.Error(t, err)
	assert.True(t, errors.IsBotProtection(err))
}

func TestParseRawCSVUnknownColumns(t *testing.T) {
	body := "License #,License Holder Name,Inspection Date\n12345,Some Provider,2024-01-01\n"
	providers, err := ParseRawCSV(body, registry.DefaultColumnMap())
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "12345", providers[0].LicenseNumber)
	assert.Equal(t, "Some Provider", providers[0].Name)
}

func TestParseRawCSVExtendedColumnMap(t *testing.T) {
	columns := registry.DefaultColumnMap().Extend(map[string]string{
		"Lic No": registry.FieldLicenseNumber,
	})
	body := "Lic No,License Holder Name\n98765,Renamed Header Provider\n"
	providers, err := ParseRawCSV(body, columns)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "98765", providers[0].LicenseNumber)
}
