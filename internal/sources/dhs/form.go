package dhs

import (
	"html"
	"net/url"
	"regexp"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

// ASP.NET hidden form fields required to replay the export postback.
const (
	fieldViewState          = "__VIEWSTATE"
	fieldViewStateGenerator = "__VIEWSTATEGENERATOR"
	fieldEventValidation    = "__EVENTVALIDATION"
)

// hiddenFields holds the postback state scraped from a search page.
type hiddenFields struct {
	ViewState          string
	ViewStateGenerator string
	EventValidation    string
}

func hiddenFieldPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)name="` + regexp.QuoteMeta(name) + `"[^>]*value="(.*?)"`)
}

var (
	viewStatePattern          = hiddenFieldPattern(fieldViewState)
	viewStateGeneratorPattern = hiddenFieldPattern(fieldViewStateGenerator)
	eventValidationPattern    = hiddenFieldPattern(fieldEventValidation)
)

// extractHiddenFields pulls the ASP.NET postback state out of a page.
func extractHiddenFields(page string) hiddenFields {
	extract := func(re *regexp.Regexp) string {
		m := re.FindStringSubmatch(page)
		if m == nil {
			return ""
		}
		return html.UnescapeString(m[1])
	}
	return hiddenFields{
		ViewState:          extract(viewStatePattern),
		ViewStateGenerator: extract(viewStateGeneratorPattern),
		EventValidation:    extract(eventValidationPattern),
	}
}

// valid reports whether the page carried the fields the export needs.
func (f hiddenFields) valid() bool {
	return f.ViewState != "" && f.EventValidation != ""
}

// exportForm builds the csvdownload postback form.
func (f hiddenFields) exportForm() url.Values {
	return url.Values{
		"__EVENTTARGET":         {"csvdownload"},
		"__EVENTARGUMENT":       {""},
		fieldViewState:          {f.ViewState},
		fieldViewStateGenerator: {f.ViewStateGenerator},
		fieldEventValidation:    {f.EventValidation},
		"__SCROLLPOSITIONX":     {"0"},
		"__SCROLLPOSITIONY":     {"0"},
	}
}

// urlWithZip returns base with the z query parameter set to zip.
func urlWithZip(base, zip string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.WrapParse("url", base, err)
	}
	q := u.Query()
	q.Set("z", zip)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
