package config

import (
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// columnsFile is the on-disk shape of a column-map override.
type columnsFile struct {
	Columns map[string]string `yaml:"columns"`
}

// LoadColumnMap reads a YAML file of raw-header to canonical-field
// mappings and overlays it on the default column map. Every target must
// be a canonical field name.
func LoadColumnMap(path string) (registry.ColumnMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file columnsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if len(file.Columns) == 0 {
		return nil, errors.NewValidationError("columns", path, "no column mappings defined")
	}

	fields := registry.Fields()
	for raw, field := range file.Columns {
		if !slices.Contains(fields, field) {
			return nil, errors.NewValidationError("columns", field, "unknown canonical field for header "+raw)
		}
	}

	return registry.DefaultColumnMap().Extend(file.Columns), nil
}
