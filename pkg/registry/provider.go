// Package registry provides the core provider registry for civicmap.
// It holds normalized provider records fetched from official licensing
// sources, supports enrich-empty merging, and persists to the CSV layout
// consumed by the static site generator.
//
// The registry is designed to be thread-safe. Records are kept in insertion
// order so generated pages and CSV output are deterministic.
//
// Example usage:
//
//	reg := registry.New()
//	reg.Add(registry.Provider{
//	    LicenseNumber: "1089793",
//	    Name:          "Little Sprouts Child Care",
//	    City:          "Minneapolis",
//	    State:         "MN",
//	})
//
//	for _, p := range reg.List() {
//	    fmt.Println(p.Slug, p.Name)
//	}
package registry

import (
	"strings"
)

// DefaultState is applied to records whose source omits the state column.
const DefaultState = "MN"

// Provider represents a normalized licensed provider record.
type Provider struct {
	// Assigned by the registry. Stable page identifier, unique within a
	// registry (slugified name + license number, -2/-3 suffix on collision).
	Slug string `json:"slug" yaml:"slug"`

	// Core licensing fields, in the canonical CSV column order.
	LicenseNumber   string `json:"license_number" yaml:"license_number"`
	Name            string `json:"provider_name" yaml:"provider_name"`
	DoingBusinessAs string `json:"doing_business_as,omitempty" yaml:"doing_business_as,omitempty"`
	LicenseType     string `json:"license_type,omitempty" yaml:"license_type,omitempty"`
	Status          string `json:"status,omitempty" yaml:"status,omitempty"`
	Address         string `json:"address,omitempty" yaml:"address,omitempty"`
	City            string `json:"city,omitempty" yaml:"city,omitempty"`
	State           string `json:"state,omitempty" yaml:"state,omitempty"`
	Zip             string `json:"zip,omitempty" yaml:"zip,omitempty"`
	County          string `json:"county,omitempty" yaml:"county,omitempty"`

	// Places holds enrichment data from the Places API, if any.
	Places *Places `json:"places,omitempty" yaml:"places,omitempty"`
}

// Places holds the enrichment fields attached to a provider record.
type Places struct {
	Query            string `json:"query,omitempty" yaml:"query,omitempty"`
	Status           string `json:"status,omitempty" yaml:"status,omitempty"`
	PlaceID          string `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty" yaml:"formatted_address,omitempty"`
	BusinessStatus   string `json:"business_status,omitempty" yaml:"business_status,omitempty"`
	Rating           string `json:"rating,omitempty" yaml:"rating,omitempty"`
	RatingsTotal     string `json:"user_ratings_total,omitempty" yaml:"user_ratings_total,omitempty"`
	Lat              string `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng              string `json:"lng,omitempty" yaml:"lng,omitempty"`
	Website          string `json:"website,omitempty" yaml:"website,omitempty"`
	Phone            string `json:"phone,omitempty" yaml:"phone,omitempty"`
	IntlPhone        string `json:"intl_phone,omitempty" yaml:"intl_phone,omitempty"`
	Types            string `json:"types,omitempty" yaml:"types,omitempty"`
	URL              string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Enrichment match statuses recorded in Places.Status.
const (
	PlacesStatusOK        = "OK"
	PlacesStatusNoMatch   = "NO_MATCH"
	PlacesStatusNoDetails = "NO_DETAILS"
	PlacesStatusCached    = "CACHED"
)

// Enriched reports whether the record carries any Places data.
func (p *Provider) Enriched() bool {
	return p.Places != nil && p.Places.Status != ""
}

// Website returns the enriched website URL, if known.
func (p *Provider) Website() string {
	if p.Places == nil {
		return ""
	}
	return p.Places.Website
}

// Phone returns the enriched phone number, if known.
func (p *Provider) Phone() string {
	if p.Places == nil {
		return ""
	}
	return p.Places.Phone
}

// AddressKey returns the normalized cache key for Places lookups:
// the lowercase alphanumeric join of address, city, state and zip,
// falling back to the provider name when the address is empty.
func (p *Provider) AddressKey() string {
	key := normalizeKey(strings.Join([]string{p.Address, p.City, p.State, p.Zip}, " "))
	if key == "" {
		key = normalizeKey(p.Name)
	}
	return key
}

// PlacesQuery returns the free-text search query used for enrichment:
// name and address parts joined with commas, empty parts skipped.
func (p *Provider) PlacesQuery() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{p.Name, p.Address, p.City, p.State, p.Zip} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// MapsQuery returns the address string used for the Google Maps link on
// detail pages, or "" when no address parts are known.
func (p *Provider) MapsQuery() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.Address, p.City, p.State, p.Zip} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// normalizeKey lowercases and strips everything but letters, digits and
// single spaces.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
