package registry

import (
	"fmt"
	"strings"
)

// Slugify lowercases text and collapses every non-alphanumeric run into a
// single dash, trimming leading and trailing dashes.
func Slugify(text string) string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	lastDash := true // suppress a leading dash
	for _, r := range text {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	return strings.Trim(b.String(), "-")
}

// baseSlug derives the slug base for a provider record: slugified name,
// suffixed with the slugified license number when present.
func baseSlug(p *Provider) string {
	name := p.Name
	if name == "" {
		name = "provider"
	}
	base := Slugify(name)
	if p.LicenseNumber != "" {
		if lic := Slugify(p.LicenseNumber); lic != "" {
			base = base + "-" + lic
		}
	}
	if base == "" {
		base = "provider"
	}
	return base
}

// slugger hands out unique slugs, suffixing collisions with -2, -3, …
// in arrival order.
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

func (s *slugger) next(p *Provider) string {
	base := baseSlug(p)
	n := s.seen[base] + 1
	s.seen[base] = n
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
