package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// LoadFile layers the file at path over Default(), then applies environment
// variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := decode(filepath.Ext(path), data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField())
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
