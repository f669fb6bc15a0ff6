// Package local loads previously downloaded raw licensing exports from
// disk, for offline normalization runs and reprocessing.
package local

import (
	"context"
	"os"

	"github.com/civicdatadog/civicmap/internal/sources/dhs"
	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/logging"
	"github.com/civicdatadog/civicmap/pkg/registry"
	"github.com/civicdatadog/civicmap/pkg/sources"
)

// Source normalizes a raw CSV export that is already on disk.
type Source struct {
	columns registry.ColumnMap
	reg     *registry.Registry
}

// New creates a local raw-CSV source.
func New(columns registry.ColumnMap) *Source {
	if columns == nil {
		columns = registry.DefaultColumnMap()
	}
	return &Source{columns: columns, reg: registry.New()}
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID { return sources.LocalCSVID }

// Fetch normalizes the raw file named in the options. A saved bot
// protection page is rejected the same way a live download would be.
func (s *Source) Fetch(_ context.Context, opts ...sources.Option) error {
	options := sources.NewFetchOptions(opts...)
	if err := options.Validate(); err != nil {
		return err
	}
	if options.RawFile == "" {
		return errors.NewConfigError("fetch", "local source needs --raw-file", nil)
	}

	data, err := os.ReadFile(options.RawFile)
	if err != nil {
		return errors.WrapIO("read", options.RawFile, err)
	}

	providers, err := dhs.ParseRawCSV(string(data), s.columns)
	if err != nil {
		return errors.NewFetchError(s.ID().String(), nil, err)
	}

	s.reg = registry.New()
	for _, p := range providers {
		if options.Limit > 0 && s.reg.Len() >= options.Limit {
			break
		}
		s.reg.Add(p)
	}

	logging.Info().
		Str("file", options.RawFile).
		Int("records", s.reg.Len()).
		Msg("Normalized local export")
	return nil
}

// Registry returns the records loaded by this source.
func (s *Source) Registry() *registry.Registry { return s.reg }

// Cleanup implements sources.Source.
func (s *Source) Cleanup() error { return nil }
