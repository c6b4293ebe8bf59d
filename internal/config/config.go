// Package config loads the host configuration for the language service.
//
// Hosts look for a luacoderassist.yml next to the workspace root; absent
// or empty files fall back to defaults. The analyzer itself takes no
// configuration; these knobs belong to the document host.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file the hosts look for.
const FileName = "luacoderassist.yml"

// Config is the top-level host configuration.
type Config struct {
	// LuaVersion is informational and shows up in server logs.
	LuaVersion string `yaml:"lua_version,omitempty"`

	// Preload lists global names seeded into the environment before any
	// document is analyzed, e.g. names injected by an embedding host.
	Preload []string `yaml:"preload,omitempty"`

	// MaxFileSizeKB caps the size of documents the host will analyze.
	// Zero means no cap.
	MaxFileSizeKB int `yaml:"max_file_size_kb,omitempty"`
}

var supportedVersions = map[string]bool{
	"":    true,
	"5.1": true,
	"5.2": true,
	"5.3": true,
	"5.4": true,
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{LuaVersion: "5.1"}
}

// ParseConfig parses and validates a configuration document. path is
// used in error messages only.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !supportedVersions[cfg.LuaVersion] {
		return nil, fmt.Errorf("%s: unsupported lua_version %q", path, cfg.LuaVersion)
	}
	if cfg.MaxFileSizeKB < 0 {
		return nil, fmt.Errorf("%s: max_file_size_kb must not be negative", path)
	}
	for _, name := range cfg.Preload {
		if name == "" {
			return nil, fmt.Errorf("%s: preload entries must not be empty", path)
		}
	}
	return cfg, nil
}

// Load reads the configuration file from dir, falling back to defaults
// when the file does not exist.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return ParseConfig(data, path)
}
