package sources

import (
	"time"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
)

// FetchOptions configures fetch operations.
type FetchOptions struct {
	// ExportURL is the direct CSV export URL, when known.
	ExportURL string

	// HARFile is a HAR capture holding the export request details.
	HARFile string

	// ZipsFile is a newline-delimited list of ZIP codes for batch mode.
	ZipsFile string

	// HTMLFile is a saved results page to parse instead of downloading.
	HTMLFile string

	// RawFile is a previously downloaded raw CSV for offline mode.
	RawFile string

	// RawDir is where raw download artifacts are written.
	RawDir string

	// HTMLMode parses results pages instead of CSV exports in batch mode.
	HTMLMode bool

	// Sleep is the polite delay between batch requests.
	Sleep time.Duration

	// Limit caps the number of records kept (0 = no limit).
	Limit int

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Option is a function that configures fetch options.
type Option func(*FetchOptions)

// WithExportURL sets the direct CSV export URL.
func WithExportURL(url string) Option {
	return func(opts *FetchOptions) {
		opts.ExportURL = url
	}
}

// WithHARFile sets the HAR capture to replay.
func WithHARFile(path string) Option {
	return func(opts *FetchOptions) {
		opts.HARFile = path
	}
}

// WithZipCodes sets the ZIP code list file for batch mode.
func WithZipCodes(path string) Option {
	return func(opts *FetchOptions) {
		opts.ZipsFile = path
	}
}

// WithHTMLFile sets a saved results page to parse.
func WithHTMLFile(path string) Option {
	return func(opts *FetchOptions) {
		opts.HTMLFile = path
	}
}

// WithRawFile sets a previously downloaded raw CSV for offline mode.
func WithRawFile(path string) Option {
	return func(opts *FetchOptions) {
		opts.RawFile = path
	}
}

// WithHTMLMode parses results pages instead of CSV exports in batch mode.
func WithHTMLMode(enabled bool) Option {
	return func(opts *FetchOptions) {
		opts.HTMLMode = enabled
	}
}

// WithRawDir sets the directory for raw download artifacts.
func WithRawDir(dir string) Option {
	return func(opts *FetchOptions) {
		opts.RawDir = dir
	}
}

// WithSleep sets the polite delay between batch requests.
func WithSleep(d time.Duration) Option {
	return func(opts *FetchOptions) {
		opts.Sleep = d
	}
}

// WithLimit caps the number of records kept.
func WithLimit(n int) Option {
	return func(opts *FetchOptions) {
		opts.Limit = n
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(opts *FetchOptions) {
		opts.Timeout = d
	}
}

// NewFetchOptions creates FetchOptions with defaults applied.
func NewFetchOptions(opts ...Option) *FetchOptions {
	options := &FetchOptions{
		RawDir:  "data",
		Sleep:   constants.DefaultBatchSleep,
		Timeout: constants.DefaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Validate checks if the fetch options are valid.
func (opts *FetchOptions) Validate() error {
	if opts == nil {
		return nil
	}
	if opts.Sleep < 0 {
		return errors.NewValidationError("sleep", opts.Sleep, "cannot be negative")
	}
	if opts.Limit < 0 {
		return errors.NewValidationError("limit", opts.Limit, "cannot be negative")
	}
	if opts.Timeout < 0 {
		return errors.NewValidationError("timeout", opts.Timeout, "cannot be negative")
	}
	return nil
}
