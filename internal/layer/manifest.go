package layer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest describes a pair of input layers in a YAML file, so a dataset's
// field names travel with the dataset instead of living in shell history.
type Manifest struct {
	Regions struct {
		Path         string `yaml:"path"`
		FieldMapping `yaml:",inline"`
	} `yaml:"regions"`
	Points struct {
		Path         string `yaml:"path"`
		TableMapping `yaml:",inline"`
	} `yaml:"points"`
}

// LoadManifest parses a layer manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "layer: parse manifest %s", path)
	}
	if m.Regions.Path == "" {
		return nil, eris.New("layer: manifest missing regions.path")
	}
	return &m, nil
}
