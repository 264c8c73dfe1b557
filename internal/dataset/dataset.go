// Package dataset loads the bundled county market dataset.
//
// The canonical dataset is embedded at build time and is immutable for the
// process lifetime. An override file (JSON or YAML) can be supplied through
// config for ad-hoc analysis runs; it must match the embedded schema, and no
// validation beyond decoding is performed. Malformed override data is the
// supplier's problem.
package dataset

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/market-dashboard/internal/model"
)

//go:embed counties.json
var embedded []byte

// Load decodes the embedded dataset.
func Load() ([]model.County, error) {
	var counties []model.County
	if err := json.Unmarshal(embedded, &counties); err != nil {
		return nil, eris.Wrap(err, "dataset: decode embedded")
	}
	return counties, nil
}

// LoadFile reads a dataset override from a JSON or YAML file, selected by
// extension.
func LoadFile(path string) ([]model.County, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	var counties []model.County
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &counties); err != nil {
			return nil, eris.Wrapf(err, "dataset: decode yaml %s", path)
		}
	default:
		if err := json.Unmarshal(data, &counties); err != nil {
			return nil, eris.Wrapf(err, "dataset: decode json %s", path)
		}
	}
	return counties, nil
}
