package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/sources"
)

func writeRawFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFetch(t *testing.T) {
	path := writeRawFile(t, "License #,License Holder Name,City,State,Zip\n"+
		"1000123,Sunshine Child Care Center,Saint Paul,MN,55101\n"+
		"1000456,Mary Johnson,Minneapolis,MN,55401\n")

	src := New(nil)
	require.NoError(t, src.Fetch(context.Background(), sources.WithRawFile(path)))

	assert.Equal(t, sources.LocalCSVID, src.ID())
	assert.Equal(t, 2, src.Registry().Len())

	p, err := src.Registry().FindByLicense("1000123")
	require.NoError(t, err)
	assert.Equal(t, "Sunshine Child Care Center", p.Name)
	assert.Equal(t, "55101", p.Zip)
}

func TestFetchLimit(t *testing.T) {
	path := writeRawFile(t, "License #,License Holder Name\n1,A\n2,B\n3,C\n")

	src := New(nil)
	require.NoError(t, src.Fetch(context.Background(),
		sources.WithRawFile(path),
		sources.WithLimit(2),
	))
	assert.Equal(t, 2, src.Registry().Len())
}

func TestFetchBotProtectionPage(t *testing.T) {
	path := writeRawFile(t, "<!DOCTYPE html>\n<html><title>Just a moment...</title></html>")

	src := New(nil)
	err := src.Fetch(context.Background(), sources.WithRawFile(path))
	require.Error(t, err)
	assert.True(t, errors.IsBotProtection(err))
}

func TestFetchMissingFile(t *testing.T) {
	src := New(nil)
	err := src.Fetch(context.Background(), sources.WithRawFile("does-not-exist.csv"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestFetchNeedsRawFile(t *testing.T) {
	src := New(nil)
	err := src.Fetch(context.Background())
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
