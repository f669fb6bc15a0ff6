// Package constants provides shared constants used throughout the civicmap
// codebase. This includes timeouts, limits, file permissions, and other
// configuration values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to
	// official data sources and the Places API
	DefaultHTTPTimeout = 60 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// FetchTimeout is the timeout for a full fetch run across all ZIP codes
	FetchTimeout = 30 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// DefaultBatchSleep is the polite delay between per-ZIP export requests
	DefaultBatchSleep = 3 * time.Second

	// DefaultPlacesSleep is the delay between Places API calls
	DefaultPlacesSleep = 200 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API keys (rw-------)
	SecureFilePermissions = 0600
)

// Site generation limits
const (
	// DefaultPerPage is the number of providers listed per directory page
	DefaultPerPage = 100

	// SitemapMaxBytes is the maximum size of a single sitemap file
	SitemapMaxBytes = 50_000_000

	// SitemapMaxURLs is the maximum number of URLs in a single sitemap file
	SitemapMaxURLs = 50_000
)

// Enrichment limits
const (
	// MaxEnrichWorkers bounds concurrent Places lookups
	MaxEnrichWorkers = 4
)

// DefaultBaseURL is the canonical base URL of the published site.
const DefaultBaseURL = "https://civicdatadog.com"

// DefaultUserAgent identifies polite automated downloads to data sources.
const DefaultUserAgent = "CivicDatadog-CCAP-Scraper/1.0 (https://civicdatadog.com)"
