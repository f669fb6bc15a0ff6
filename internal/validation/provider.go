// Package validation checks normalized provider records for the data
// problems that break page generation or mislead readers: missing names,
// malformed state or ZIP values, and duplicate license numbers.
package validation

import (
	"fmt"
	"regexp"

	"github.com/civicdatadog/civicmap/pkg/registry"
)

var (
	statePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
)

// Issue describes one problem with one record.
type Issue struct {
	Slug    string // record identifier, if assigned
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Slug, i.Field, i.Message)
}

// Report contains the results of validating a registry.
type Report struct {
	Records int
	Errors  []Issue // problems that should block publishing
	Warns   []Issue // problems worth fixing but publishable
}

// Valid reports whether the registry is fit to publish.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

// Validate checks every record in the registry and returns a report.
func Validate(reg *registry.Registry) *Report {
	report := &Report{Records: reg.Len()}
	seenLicense := make(map[string]string)

	for _, p := range reg.List() {
		if p.Name == "" {
			report.Errors = append(report.Errors, Issue{
				Slug: p.Slug, Field: registry.FieldName, Message: "missing provider name",
			})
		}
		if p.State != "" && !statePattern.MatchString(p.State) {
			report.Errors = append(report.Errors, Issue{
				Slug: p.Slug, Field: registry.FieldState,
				Message: fmt.Sprintf("%q is not a two-letter state code", p.State),
			})
		}
		if p.Zip != "" && !zipPattern.MatchString(p.Zip) {
			report.Errors = append(report.Errors, Issue{
				Slug: p.Slug, Field: registry.FieldZip,
				Message: fmt.Sprintf("%q is not a valid ZIP code", p.Zip),
			})
		}

		if p.LicenseNumber == "" {
			report.Warns = append(report.Warns, Issue{
				Slug: p.Slug, Field: registry.FieldLicenseNumber, Message: "missing license number",
			})
		} else if prev, dup := seenLicense[p.LicenseNumber]; dup {
			report.Warns = append(report.Warns, Issue{
				Slug: p.Slug, Field: registry.FieldLicenseNumber,
				Message: fmt.Sprintf("duplicate license number %s (also on %s)", p.LicenseNumber, prev),
			})
		} else {
			seenLicense[p.LicenseNumber] = p.Slug
		}

		if p.Address == "" && p.City == "" {
			report.Warns = append(report.Warns, Issue{
				Slug: p.Slug, Field: registry.FieldAddress, Message: "no address or city",
			})
		}
	}
	return report
}
