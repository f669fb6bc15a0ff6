package dhs

import (
	"html"
	"regexp"
	"strings"

	"github.com/civicdatadog/civicmap/pkg/registry"
)

// The DHS Results.aspx markup is table soup with stable CSS classes, so
// records are carved out with one multi-group pattern per listing block.
var (
	listingPattern = regexp.MustCompile(`(?is)<table border="0" class="LicTable1">.*?` +
		`class="LicTitle1"[^>]*>\s*<a[^>]*>(.*?)</a>.*?` +
		`class="LicStatus1"[^>]*>\s*(.*?)</td>.*?` +
		`<table\s+border="0"\s+class="LicTable">.*?` +
		`class="LicContentL"[^>]*>\s*(.*?)</td>.*?` +
		`class="LicContentR"[^>]*>\s*(.*?)</td>`)

	brPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	cityStateZipPattern  = regexp.MustCompile(`^(.*?),\s*([A-Z]{2})\s+(\d{5})`)
	licenseNumberPattern = regexp.MustCompile(`License number:\s*([A-Za-z0-9-]+)`)
	serviceTypePattern   = regexp.MustCompile(`Type of service:\s*(.+)`)
)

// ParseResultsPage extracts provider records from a Results.aspx page.
func ParseResultsPage(page string) []registry.Provider {
	var providers []registry.Provider
	for _, match := range listingPattern.FindAllStringSubmatch(page, -1) {
		name := strings.TrimSpace(html.UnescapeString(match[1]))
		status := strings.TrimSpace(html.UnescapeString(match[2]))
		leftLines := cleanBlock(match[3])
		rightText := html.UnescapeString(tagPattern.ReplaceAllString(match[4], ""))

		p := registry.Provider{
			Name:   name,
			Status: status,
			State:  registry.DefaultState,
		}

		if len(leftLines) > 0 {
			p.Address = leftLines[0]
		}
		if len(leftLines) >= 2 {
			if m := cityStateZipPattern.FindStringSubmatch(leftLines[1]); m != nil {
				p.City = strings.TrimSpace(m[1])
				p.State = m[2]
				p.Zip = m[3]
			}
		}
		for _, line := range leftLines[min(2, len(leftLines)):] {
			if strings.HasSuffix(line, "County") {
				p.County = strings.TrimSpace(strings.TrimSuffix(line, "County"))
			}
		}

		if m := licenseNumberPattern.FindStringSubmatch(rightText); m != nil {
			p.LicenseNumber = strings.TrimSpace(m[1])
		}
		if m := serviceTypePattern.FindStringSubmatch(rightText); m != nil {
			p.LicenseType = strings.TrimSpace(m[1])
		}

		providers = append(providers, p)
	}
	return providers
}

// cleanBlock converts an HTML fragment into trimmed text lines: <br> tags
// become newlines, remaining tags are stripped, entities are unescaped.
func cleanBlock(fragment string) []string {
	text := brPattern.ReplaceAllString(fragment, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
