package sources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/registry"
)

type stubSource struct {
	id  ID
	reg *registry.Registry
}

func (s *stubSource) ID() ID                                 { return s.id }
func (s *stubSource) Fetch(context.Context, ...Option) error { return nil }
func (s *stubSource) Registry() *registry.Registry           { return s.reg }
func (s *stubSource) Cleanup() error                         { return nil }

func TestSourcesContainer(t *testing.T) {
	container := NewSources()
	assert.Equal(t, 0, container.Len())

	src := &stubSource{id: LocalCSVID, reg: registry.New()}
	container.Set(LocalCSVID, src)

	got, found := container.Get(LocalCSVID)
	require.True(t, found)
	assert.Equal(t, LocalCSVID, got.ID())
	assert.Equal(t, 1, container.Len())
	assert.Len(t, container.List(), 1)

	container.Delete(LocalCSVID)
	_, found = container.Get(LocalCSVID)
	assert.False(t, found)
}

func TestIDValidation(t *testing.T) {
	for _, id := range IDs() {
		assert.True(t, id.IsValid(), "id %s", id)
	}
	assert.False(t, ID("bogus").IsValid())
	assert.Equal(t, "dhs_batch", DHSBatchID.String())
}

func TestFetchOptionsDefaults(t *testing.T) {
	opts := NewFetchOptions()
	assert.Equal(t, "data", opts.RawDir)
	assert.Equal(t, 3*time.Second, opts.Sleep)
	assert.Zero(t, opts.Limit)
	require.NoError(t, opts.Validate())
}

func TestFetchOptionsApply(t *testing.T) {
	opts := NewFetchOptions(
		WithExportURL("https://example.com/export"),
		WithZipCodes("zips.txt"),
		WithSleep(0),
		WithLimit(10),
		WithRawDir("/tmp/raw"),
	)
	assert.Equal(t, "https://example.com/export", opts.ExportURL)
	assert.Equal(t, "zips.txt", opts.ZipsFile)
	assert.Zero(t, opts.Sleep)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, "/tmp/raw", opts.RawDir)
}

func TestFetchOptionsValidate(t *testing.T) {
	opts := NewFetchOptions(WithSleep(-time.Second))
	assert.Error(t, opts.Validate())

	opts = NewFetchOptions(WithLimit(-1))
	assert.Error(t, opts.Validate())
}
