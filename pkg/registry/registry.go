package registry

import (
	"sync"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

// MergeStrategy defines how registries should be merged.
type MergeStrategy int

const (
	// MergeEnrichEmpty fills only empty fields on existing records and
	// appends records not seen before.
	MergeEnrichEmpty MergeStrategy = iota
	// MergeAppendOnly only adds new records, skips existing ones.
	MergeAppendOnly
)

// Registry is a thread-safe, insertion-ordered container of provider
// records. Records are assigned a unique slug when added.
type Registry struct {
	mu        sync.RWMutex
	records   []*Provider
	bySlug    map[string]*Provider
	byLicense map[string]*Provider
	slugs     *slugger
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		bySlug:    make(map[string]*Provider),
		byLicense: make(map[string]*Provider),
		slugs:     newSlugger(),
	}
}

// Add normalizes defaults, assigns a unique slug and appends the record.
// It returns the stored record.
func (r *Registry) Add(p Provider) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(p)
}

func (r *Registry) add(p Provider) *Provider {
	if p.State == "" {
		p.State = DefaultState
	}
	p.Slug = r.slugs.next(&p)

	stored := &p
	r.records = append(r.records, stored)
	r.bySlug[p.Slug] = stored
	if p.LicenseNumber != "" {
		if _, taken := r.byLicense[p.LicenseNumber]; !taken {
			r.byLicense[p.LicenseNumber] = stored
		}
	}
	return stored
}

// Get returns the record with the given slug.
func (r *Registry) Get(slug string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bySlug[slug]
	if !ok {
		return nil, errors.NewNotFoundError("provider", slug)
	}
	return p, nil
}

// FindByLicense returns the first record with the given license number.
func (r *Registry) FindByLicense(license string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byLicense[license]
	if !ok {
		return nil, errors.NewNotFoundError("provider", license)
	}
	return p, nil
}

// List returns the records in insertion order. The returned slice is a
// copy; the pointed-to records are shared.
func (r *Registry) List() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Provider, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Merge folds other into r using the given strategy. Records are matched
// by license number; unmatched records are appended.
func (r *Registry) Merge(other *Registry, strategy MergeStrategy) {
	if other == nil {
		return
	}
	for _, incoming := range other.List() {
		r.mu.Lock()
		existing := (*Provider)(nil)
		if incoming.LicenseNumber != "" {
			existing = r.byLicense[incoming.LicenseNumber]
		}
		if existing == nil {
			clone := *incoming
			clone.Slug = ""
			r.add(clone)
			r.mu.Unlock()
			continue
		}
		if strategy == MergeEnrichEmpty {
			fillEmpty(existing, incoming)
		}
		r.mu.Unlock()
	}
}

// fillEmpty copies non-empty fields from src into empty fields of dst.
func fillEmpty(dst, src *Provider) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.DoingBusinessAs == "" {
		dst.DoingBusinessAs = src.DoingBusinessAs
	}
	if dst.LicenseType == "" {
		dst.LicenseType = src.LicenseType
	}
	if dst.Status == "" {
		dst.Status = src.Status
	}
	if dst.Address == "" {
		dst.Address = src.Address
	}
	if dst.City == "" {
		dst.City = src.City
	}
	if dst.State == "" {
		dst.State = src.State
	}
	if dst.Zip == "" {
		dst.Zip = src.Zip
	}
	if dst.County == "" {
		dst.County = src.County
	}
	if dst.Places == nil {
		dst.Places = src.Places
	}
}
