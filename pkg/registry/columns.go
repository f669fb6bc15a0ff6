package registry

import "strings"

// Canonical field names used in the normalized CSV and in column maps.
const (
	FieldLicenseNumber   = "license_number"
	FieldName            = "provider_name"
	FieldDoingBusinessAs = "doing_business_as"
	FieldLicenseType     = "license_type"
	FieldStatus          = "status"
	FieldAddress         = "address"
	FieldCity            = "city"
	FieldState           = "state"
	FieldZip             = "zip"
	FieldCounty          = "county"
)

// Fields lists the canonical licensing fields in CSV column order.
func Fields() []string {
	return []string{
		FieldLicenseNumber,
		FieldName,
		FieldDoingBusinessAs,
		FieldLicenseType,
		FieldStatus,
		FieldAddress,
		FieldCity,
		FieldState,
		FieldZip,
		FieldCounty,
	}
}

// ColumnMap maps raw source header names to canonical field names.
// Source agencies rename columns between exports, so the map carries a
// few spellings per field and can be extended from configuration.
type ColumnMap map[string]string

// DefaultColumnMap returns the mapping for known MN DHS export headers.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		"LicenseNumber":       FieldLicenseNumber,
		"License #":           FieldLicenseNumber,
		"License Holder Name": FieldName,
		"Provider Name":       FieldName,
		"Doing Business As":   FieldDoingBusinessAs,
		"DBA Name":            FieldDoingBusinessAs,
		"License Type":        FieldLicenseType,
		"City":                FieldCity,
		"State":               FieldState,
		"Zip":                 FieldZip,
		"County":              FieldCounty,
		"Status":              FieldStatus,
		"License Status":      FieldStatus,
		"Address":             FieldAddress,
		"Street Address":      FieldAddress,
	}
}

// Extend overlays extra header mappings on top of m and returns m.
func (m ColumnMap) Extend(extra map[string]string) ColumnMap {
	for raw, field := range extra {
		m[raw] = field
	}
	return m
}

// Normalize builds a Provider from a raw header→value row using the map.
// Values are whitespace-trimmed; unmapped columns are ignored.
func (m ColumnMap) Normalize(row map[string]string) Provider {
	var p Provider
	for raw, value := range row {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch m[raw] {
		case FieldLicenseNumber:
			p.LicenseNumber = value
		case FieldName:
			p.Name = value
		case FieldDoingBusinessAs:
			p.DoingBusinessAs = value
		case FieldLicenseType:
			p.LicenseType = value
		case FieldStatus:
			p.Status = value
		case FieldAddress:
			p.Address = value
		case FieldCity:
			p.City = value
		case FieldState:
			p.State = value
		case FieldZip:
			p.Zip = value
		case FieldCounty:
			p.County = value
		}
	}
	return p
}
