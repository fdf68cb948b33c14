// Package config loads the workspace configuration from
// .powermap/config.yaml and supplies defaults for everything the file does
// not set.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all pipeline configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Paths      PathsConfig      `yaml:"paths"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Server     ServerConfig     `yaml:"server"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig locates the source and output trees, relative to the
// workspace root unless absolute.
type PathsConfig struct {
	SourceHTML string `yaml:"source_html"` // original monolithic page
	DataDir    string `yaml:"data_dir"`
	SourcesDir string `yaml:"sources_dir"` // raw inputs, never shipped
	DistDir    string `yaml:"dist_dir"`
	MapsDir    string `yaml:"maps_dir"`
	WebDir     string `yaml:"web_dir"`
	GeoJSON    string `yaml:"geojson"` // 2024 constituency boundaries
	StorePath  string `yaml:"store_path"`
}

// ThresholdsConfig holds the fixed classification and matching thresholds.
type ThresholdsConfig struct {
	// Quadrant axes: Reform/Leave % and non-white %.
	ReformPct   float64 `yaml:"reform_pct"`
	NonWhitePct float64 `yaml:"nonwhite_pct"`

	// Name matching.
	FuzzyRatio      float64 `yaml:"fuzzy_ratio"`
	BoundaryOverlap float64 `yaml:"boundary_overlap"`

	// Percentage-sum tolerance for validation.
	PctSumTolerance float64 `yaml:"pct_sum_tolerance"`
}

// ServerConfig configures the dev server.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// SnapshotConfig configures static map rendering.
type SnapshotConfig struct {
	Enabled bool     `yaml:"enabled"`
	Pages   []string `yaml:"pages"` // server-relative paths to capture
	Timeout string   `yaml:"timeout"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Name:    "powermap",
		Version: "1.0.0",
		Paths: PathsConfig{
			SourceHTML: "original-index.html",
			DataDir:    "data",
			SourcesDir: filepath.Join("data", "sources"),
			DistDir:    "dist",
			MapsDir:    "maps",
			WebDir:     "web",
			GeoJSON:    filepath.Join("data", "constituencies-2024.geojson"),
			StorePath:  filepath.Join(".powermap", "powermap.db"),
		},
		Thresholds: ThresholdsConfig{
			// 18.3 is the Census 2021 England & Wales non-white share; a
			// constituency above it is more diverse than the average.
			ReformPct:       20.0,
			NonWhitePct:     18.3,
			FuzzyRatio:      0.80,
			BoundaryOverlap: 0.50,
			PctSumTolerance: 0.5,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Watch:    false,
			Debounce: "500ms",
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Pages:   []string{"/maps/"},
			Timeout: "60s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads .powermap/config.yaml under workspace, overlaying the
// defaults. A missing file is not an error: defaults are returned.
func Load(workspace string) (*Config, error) {
	return LoadFile(filepath.Join(workspace, ".powermap", "config.yaml"))
}

// LoadFile reads an explicit config file, overlaying the defaults. A
// missing file is not an error: defaults are returned.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve makes a config path absolute against the workspace root.
func (c *Config) Resolve(workspace, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}

// Save writes the config back to .powermap/config.yaml, creating the
// directory if needed. Used by `powermap init`-style bootstrapping in
// tests and by hand when tuning thresholds.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".powermap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}
