package registry

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
)

// Places column names in the enriched CSV, in write order.
var placesFields = []string{
	"places_query",
	"places_status",
	"places_place_id",
	"places_name",
	"places_formatted_address",
	"places_business_status",
	"places_rating",
	"places_user_ratings_total",
	"places_lat",
	"places_lng",
	"places_website",
	"places_phone",
	"places_intl_phone",
	"places_types",
	"places_url",
}

// Read parses a normalized provider CSV into a new Registry. The header
// row must use canonical field names; places_* columns are optional.
func Read(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("csv", "", "empty input", nil)
	}
	if err != nil {
		return nil, errors.WrapParse("csv", "", err)
	}

	reg := New()
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", "", err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		reg.Add(fromRow(row))
	}
	return reg, nil
}

// ReadFile parses a normalized provider CSV file into a new Registry.
func ReadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	reg, err := Read(f)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return reg, nil
}

// Write serializes the registry as a normalized CSV. Places columns are
// emitted only when at least one record is enriched.
func (r *Registry) Write(w io.Writer) error {
	records := r.List()

	enriched := false
	for _, p := range records {
		if p.Places != nil {
			enriched = true
			break
		}
	}

	header := Fields()
	if enriched {
		header = append(header, placesFields...)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.WrapIO("write", "csv header", err)
	}
	for _, p := range records {
		if err := cw.Write(toRow(p, enriched)); err != nil {
			return errors.WrapIO("write", "csv record", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile serializes the registry to path, creating parent directories.
func (r *Registry) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := r.Write(f); err != nil {
		return err
	}
	return f.Close()
}

func fromRow(row map[string]string) Provider {
	p := Provider{
		LicenseNumber:   row[FieldLicenseNumber],
		Name:            row[FieldName],
		DoingBusinessAs: row[FieldDoingBusinessAs],
		LicenseType:     row[FieldLicenseType],
		Status:          row[FieldStatus],
		Address:         row[FieldAddress],
		City:            row[FieldCity],
		State:           row[FieldState],
		Zip:             row[FieldZip],
		County:          row[FieldCounty],
	}

	places := Places{
		Query:            row["places_query"],
		Status:           row["places_status"],
		PlaceID:          row["places_place_id"],
		Name:             row["places_name"],
		FormattedAddress: row["places_formatted_address"],
		BusinessStatus:   row["places_business_status"],
		Rating:           row["places_rating"],
		RatingsTotal:     row["places_user_ratings_total"],
		Lat:              row["places_lat"],
		Lng:              row["places_lng"],
		Website:          row["places_website"],
		Phone:            row["places_phone"],
		IntlPhone:        row["places_intl_phone"],
		Types:            row["places_types"],
		URL:              row["places_url"],
	}
	if places != (Places{}) {
		p.Places = &places
	}
	return p
}

func toRow(p *Provider, enriched bool) []string {
	row := []string{
		p.LicenseNumber,
		p.Name,
		p.DoingBusinessAs,
		p.LicenseType,
		p.Status,
		p.Address,
		p.City,
		p.State,
		p.Zip,
		p.County,
	}
	if !enriched {
		return row
	}

	places := p.Places
	if places == nil {
		places = &Places{}
	}
	return append(row,
		places.Query,
		places.Status,
		places.PlaceID,
		places.Name,
		places.FormattedAddress,
		places.BusinessStatus,
		places.Rating,
		places.RatingsTotal,
		places.Lat,
		places.Lng,
		places.Website,
		places.Phone,
		places.IntlPhone,
		places.Types,
		places.URL,
	)
}
