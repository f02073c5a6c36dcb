package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/crate/internal/shared"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a seed: a top-level list named items.
type seedFile[T any] struct {
	Items []T `json:"items" toml:"items" yaml:"items"`
}

// LoadSeed reads entities from a .toml, .yaml/.yml or .json file.
func LoadSeed[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile[T]
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &seed)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seed)
	case ".json":
		err = json.Unmarshal(data, &seed)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedSeed, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse seed file %s: %v", shared.ErrMalformedInput, path, err)
	}

	return seed.Items, nil
}
