package dhs

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

// Export holds the replayable request details for the licensing CSV
// export, lifted from a browser HAR capture.
type Export struct {
	Method  string
	URL     string
	Headers map[string]string
	Cookies map[string]string
	Body    string
}

// harFile models the subset of the HAR 1.2 format we need.
type harFile struct {
	Log struct {
		Entries []harEntry `json:"entries"`
	} `json:"log"`
}

type harEntry struct {
	Request struct {
		Method   string    `json:"method"`
		URL      string    `json:"url"`
		Headers  []harPair `json:"headers"`
		Cookies  []harPair `json:"cookies"`
		PostData struct {
			Text string `json:"text"`
		} `json:"postData"`
	} `json:"request"`
	Response struct {
		Headers []harPair `json:"headers"`
		Content struct {
			MimeType string `json:"mimeType"`
		} `json:"content"`
	} `json:"response"`
}

type harPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Headers that the HTTP client must manage itself.
var droppedHeaders = map[string]bool{
	"Host":           true,
	"Content-Length": true,
	"Connection":     true,
	"Cookie":         true,
}

// LoadExport finds the CSV export request inside a HAR capture: the first
// entry whose response Content-Type is text/csv.
func LoadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var har harFile
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, errors.WrapParse("har", path, err)
	}

	for _, entry := range har.Log.Entries {
		contentType := ""
		for _, h := range entry.Response.Headers {
			if strings.EqualFold(h.Name, "Content-Type") {
				contentType = h.Value
				break
			}
		}
		if contentType == "" {
			contentType = entry.Response.Content.MimeType
		}
		if !strings.Contains(strings.ToLower(contentType), "text/csv") {
			continue
		}
		if entry.Request.URL == "" {
			continue
		}

		export := &Export{
			Method:  strings.ToUpper(entry.Request.Method),
			URL:     entry.Request.URL,
			Headers: make(map[string]string),
			Cookies: make(map[string]string),
			Body:    entry.Request.PostData.Text,
		}
		if export.Method == "" {
			export.Method = "GET"
		}
		for _, h := range entry.Request.Headers {
			if droppedHeaders[h.Name] || strings.HasPrefix(h.Name, ":") {
				continue
			}
			export.Headers[h.Name] = h.Value
		}
		for _, c := range entry.Request.Cookies {
			export.Cookies[c.Name] = c.Value
		}
		return export, nil
	}

	return nil, errors.NewParseError("har", path, "no CSV export response found", nil)
}
