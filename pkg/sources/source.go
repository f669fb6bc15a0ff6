// Package sources defines interfaces and types for provider data sources.
// Sources are responsible for downloading and normalizing provider records
// from official exports, saved HTML results and local files.
//
// The package provides a unified interface for different acquisition modes
// while keeping the acquisition details (HAR replay, form posts, offline
// files) inside each source implementation.
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/civicdatadog/civicmap/pkg/registry"
)

// ID represents the identifier of a data source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known source IDs.
const (
	// DHSExportID downloads the official CSV export directly.
	DHSExportID ID = "dhs_export"
	// DHSBatchID replays the export form per ZIP code.
	DHSBatchID ID = "dhs_batch"
	// DHSHTMLID parses saved results pages.
	DHSHTMLID ID = "dhs_html"
	// LocalCSVID reads a previously downloaded raw CSV.
	LocalCSVID ID = "local_csv"
)

// IDs returns all known source IDs.
func IDs() []ID {
	return []ID{
		DHSExportID,
		DHSBatchID,
		DHSHTMLID,
		LocalCSVID,
	}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Source represents a data source for provider records.
type Source interface {
	// ID returns the identifier of this source
	ID() ID

	// Fetch retrieves and normalizes data from this source
	Fetch(ctx context.Context, opts ...Option) error

	// Registry returns the records fetched by this source
	Registry() *registry.Registry

	// Cleanup releases any resources (called after all Fetch operations)
	Cleanup() error
}

// Sources is a thread-safe container for managing multiple data sources.
type Sources struct {
	mu      sync.RWMutex
	sources map[ID]Source
}

// NewSources creates a new Sources instance.
func NewSources() *Sources {
	return &Sources{
		sources: make(map[ID]Source),
	}
}

// Get returns a source by ID.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set sets a source by ID.
func (s *Sources) Set(id ID, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[id] = src
}

// Delete deletes a source by ID.
func (s *Sources) Delete(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, id)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns a slice of all sources.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sources := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	return sources
}
