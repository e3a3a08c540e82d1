// Package config loads the optional YAML config file that supplies default
// mail headers and run settings. Flags always win over config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/quentin/makamail/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// DefaultFileName is searched in the working directory, then $HOME.
const DefaultFileName = ".makamail.yaml"

// maxConfigSize caps config input to prevent memory exhaustion.
const maxConfigSize = 1 << 20

// Config holds defaults for message composition.
type Config struct {
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Cc       []string `yaml:"cc"`
	Subject  string   `yaml:"subject"`
	Headers  []string `yaml:"headers"` // raw "Name: value" lines
	Boundary string   `yaml:"boundary"`
	Workers  int      `yaml:"workers"`
}

// Load reads a config file. An explicit path must exist; with an empty path
// the default locations are searched and an absent file yields a zero
// Config, not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		found, ok := discover()
		if !ok {
			return &Config{}, nil
		}
		path = found
	} else if !fileutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfigNotFound, path, err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrConfigParse, path, maxConfigSize)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfigParse, path, err)
	}
	return &cfg, nil
}

// discover looks for the default config file in CWD, then $HOME.
func discover() (string, bool) {
	if fileutil.FileExists(DefaultFileName) {
		return DefaultFileName, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, DefaultFileName)
	if fileutil.FileExists(path) {
		return path, true
	}
	return "", false
}
