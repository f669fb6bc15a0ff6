package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

func runCacheTests(t *testing.T, cache Cache) {
	ctx := context.Background()

	_, err := cache.Get(ctx, "123mainstsaintpaulmn55101")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	places := &registry.Places{
		Query:   "Sunshine Child Care, 123 Main St, Saint Paul, MN, 55101",
		Status:  registry.PlacesStatusOK,
		PlaceID: "ChIJexample",
		Name:    "Sunshine Child Care Center",
		Rating:  "4.8",
		Website: "https://sunshine.example.com",
	}
	require.NoError(t, cache.Put(ctx, "123mainstsaintpaulmn55101", places))

	got, err := cache.Get(ctx, "123mainstsaintpaulmn55101")
	require.NoError(t, err)
	assert.Equal(t, places, got)

	// Overwrite replaces the entry instead of duplicating it.
	places.Status = registry.PlacesStatusNoDetails
	require.NoError(t, cache.Put(ctx, "123mainstsaintpaulmn55101", places))

	got, err = cache.Get(ctx, "123mainstsaintpaulmn55101")
	require.NoError(t, err)
	assert.Equal(t, registry.PlacesStatusNoDetails, got.Status)

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, cache.Put(ctx, "456oakaveminneapolismn55401", &registry.Places{
		Status: registry.PlacesStatusNoMatch,
	}))
	n, err = cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Error(t, cache.Put(ctx, "", places))
	assert.Error(t, cache.Put(ctx, "key", nil))
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	runCacheTests(t, cache)
}

func TestSQLiteCache(t *testing.T) {
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache", "places.db"))
	require.NoError(t, err)
	defer cache.Close()
	runCacheTests(t, cache)
}

func TestSQLiteCachePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "places.db")

	cache, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "somekey", &registry.Places{Status: registry.PlacesStatusOK}))
	require.NoError(t, cache.Close())

	reopened, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "somekey")
	require.NoError(t, err)
	assert.Equal(t, registry.PlacesStatusOK, got.Status)
}

func TestSQLiteCacheConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "places.db"))
	require.NoError(t, err)
	defer cache.Close()

	// Enrichment workers write from several goroutines at once; none of
	// them may surface SQLITE_BUSY.
	const workers = 8
	const puts = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*puts)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < puts; i++ {
				key := fmt.Sprintf("worker%dkey%d", w, i)
				errs <- cache.Put(ctx, key, &registry.Places{Status: registry.PlacesStatusOK})
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*puts, n)
}

func TestMemoryCacheCopiesEntries(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	places := &registry.Places{Status: registry.PlacesStatusOK}
	require.NoError(t, cache.Put(ctx, "key", places))

	// Mutating the caller's struct must not leak into the cache.
	places.Status = registry.PlacesStatusNoMatch

	got, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, registry.PlacesStatusOK, got.Status)
}
