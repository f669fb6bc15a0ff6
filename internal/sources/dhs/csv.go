package dhs

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// IsBotProtectionPage reports whether body is an HTML challenge page
// where machine-readable data was expected. The licensing site serves a
// CAPTCHA page to clients it mistrusts, with a 200 status.
func IsBotProtectionPage(body string) bool {
	return isHTMLDocument(body)
}

func isHTMLDocument(body string) bool {
	return strings.HasPrefix(strings.TrimLeft(body, " \t\r\n"), "<!DOCTYPE html>")
}

// ParseRawCSV normalizes a raw licensing export using the column map.
// Rows that fail to parse individually are skipped; a body that is not
// CSV at all (bot protection) is an error.
func ParseRawCSV(body string, columns registry.ColumnMap) ([]registry.Provider, error) {
	if IsBotProtectionPage(body) {
		return nil, errors.ErrBotProtection
	}

	cr := csv.NewReader(strings.NewReader(body))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("csv", "", "empty export", nil)
	}
	if err != nil {
		return nil, errors.WrapParse("csv", "", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var providers []registry.Provider
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single malformed row should not sink the export.
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		providers = append(providers, columns.Normalize(row))
	}
	return providers, nil
}
