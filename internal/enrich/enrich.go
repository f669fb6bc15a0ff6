package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civicdatadog/civicmap/internal/storage"
	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// Stats summarizes an enrichment run.
type Stats struct {
	Total   int // records considered
	Looked  int // live API lookups performed
	Cached  int // records filled from cache
	NoMatch int // lookups with no usable hit
	Failed  int // lookups that errored
}

// Enricher attaches Places data to registry records.
type Enricher struct {
	client  *Client
	cache   storage.Cache
	sleep   time.Duration
	workers int
	limit   int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithSleep sets the pause between API calls per worker.
func WithSleep(d time.Duration) Option {
	return func(e *Enricher) { e.sleep = d }
}

// WithWorkers bounds concurrent lookups.
func WithWorkers(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLimit caps the number of records enriched (0 = no limit).
func WithLimit(n int) Option {
	return func(e *Enricher) { e.limit = n }
}

// New creates an Enricher. A nil cache falls back to an in-memory one,
// which still deduplicates shared addresses within the run.
func New(client *Client, cache storage.Cache, opts ...Option) *Enricher {
	e := &Enricher{
		client:  client,
		cache:   cache,
		sleep:   constants.DefaultPlacesSleep,
		workers: constants.MaxEnrichWorkers,
	}
	if e.cache == nil {
		e.cache = storage.NewMemoryCache()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich resolves every record in reg against the Places API, reusing
// cached results for addresses seen before. Records sharing an address
// are looked up once; the extras are marked as cached. Individual lookup
// failures are logged and counted, not fatal.
func (e *Enricher) Enrich(ctx context.Context, reg *registry.Registry) (*Stats, error) {
	providers := reg.List()
	if e.limit > 0 && len(providers) > e.limit {
		providers = providers[:e.limit]
	}

	stats := &Stats{Total: len(providers)}

	// One lookup per unique address key; the first record owning a key
	// keeps the live status, the rest are marked CACHED.
	owner := make(map[string]*registry.Provider, len(providers))
	var pending []*registry.Provider
	for _, p := range providers {
		key := p.AddressKey()
		if key == "" {
			continue
		}
		if _, seen := owner[key]; seen {
			continue
		}
		owner[key] = p
		if _, err := e.cache.Get(ctx, key); errors.IsNotFound(err) {
			pending = append(pending, p)
		} else if err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	live := make(map[string]bool, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, p := range pending {
		g.Go(func() error {
			places, err := e.lookup(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.Error().Err(err).Str("provider", p.Name).Msg("Places lookup failed")
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			stats.Looked++
			live[p.AddressKey()] = true
			if places.Status == registry.PlacesStatusNoMatch {
				stats.NoMatch++
			}
			mu.Unlock()
			return e.cache.Put(gctx, p.AddressKey(), places)
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	// Apply cached results to every record.
	for _, p := range providers {
		key := p.AddressKey()
		if key == "" {
			continue
		}
		places, err := e.cache.Get(ctx, key)
		if err != nil {
			if errors.IsNotFound(err) {
				continue // lookup failed earlier
			}
			return stats, err
		}
		if !live[key] || owner[key] != p {
			// Shared address or pre-existing cache entry.
			copied := *places
			copied.Status = registry.PlacesStatusCached
			places = &copied
			stats.Cached++
		}
		p.Places = places
	}

	logging.Info().
		Int("total", stats.Total).
		Int("lookups", stats.Looked).
		Int("cached", stats.Cached).
		Int("no_match", stats.NoMatch).
		Int("failed", stats.Failed).
		Msg("Enrichment complete")
	return stats, nil
}

// lookup performs the two-step text search + details flow for a record.
func (e *Enricher) lookup(ctx context.Context, p *registry.Provider) (*registry.Places, error) {
	query := p.PlacesQuery()
	places := &registry.Places{Query: query}

	result, err := e.client.TextSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := e.pause(ctx); err != nil {
		return nil, err
	}
	if result == nil {
		places.Status = registry.PlacesStatusNoMatch
		return places, nil
	}

	places.PlaceID = result.PlaceID
	places.Name = result.Name
	places.FormattedAddress = result.FormattedAddress
	places.BusinessStatus = result.BusinessStatus
	places.Rating = result.Rating.String()
	places.RatingsTotal = result.UserRatingsTotal.String()

	var details *PlaceDetails
	if result.PlaceID != "" {
		details, err = e.client.Details(ctx, result.PlaceID)
		if err != nil {
			return nil, err
		}
		if err := e.pause(ctx); err != nil {
			return nil, err
		}
	}
	if details == nil {
		places.Status = registry.PlacesStatusNoDetails
		return places, nil
	}

	places.Lat = details.Geometry.Location.Lat.String()
	places.Lng = details.Geometry.Location.Lng.String()
	places.Website = details.Website
	places.Phone = details.FormattedPhoneNumber
	places.IntlPhone = details.InternationalPhoneNumber
	places.Types = strings.Join(details.Types, ",")
	places.URL = details.URL
	places.Status = registry.PlacesStatusOK
	return places, nil
}

func (e *Enricher) pause(ctx context.Context) error {
	if e.sleep <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.sleep):
		return nil
	}
}
