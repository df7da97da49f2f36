// Package config loads the application configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the server binary's runtime settings.
type Config struct {
	// Listen is the HTTP listen address for the editor gateway.
	Listen string `json:"listen" yaml:"listen"`
	// StorageRoot is the directory for the durable file backend.
	StorageRoot string `json:"storage_root" yaml:"storage_root"`
	// SQLitePath enables the embedded engine when non-empty.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`
	// AutosaveDelayMS is the debounce window for background saves, in
	// milliseconds.
	AutosaveDelayMS int `json:"autosave_delay_ms" yaml:"autosave_delay_ms"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// AutosaveDelay returns the debounce window as a duration.
func (c Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMS) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:          ":8205",
		StorageRoot:     "data",
		SQLitePath:      filepath.Join("data", "cvforge.db"),
		AutosaveDelayMS: 1000,
		LogLevel:        "info",
	}
}

// LoadJSON loads config from a JSON reader, over defaults.
func LoadJSON(r io.Reader) (Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadYAML loads config from a YAML reader, over defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile loads a config file, picking the decoder from the extension.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}
