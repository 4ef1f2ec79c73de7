package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Config holds all voynich-sub021 configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Corpus artifact location
	Corpus CorpusConfig `yaml:"corpus"`

	// Reachability engine settings
	Engine EngineConfig `yaml:"engine"`

	// Morphological segmentation tables
	Segmentation SegmentationConfig `yaml:"segmentation"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CorpusConfig locates the static corpus artifacts.
type CorpusConfig struct {
	// DatabasePath is the SQLite corpus produced by the external
	// data-preparation step (see cmd/tools/corpus_builder).
	DatabasePath string `yaml:"database_path"`
}

// EngineConfig configures the zone projector and reachability engine.
type EngineConfig struct {
	// Threshold is the page-spread cutoff separating RESTRICTED from
	// UNIVERSAL vocabulary. There is no canonical value; it must be
	// supplied explicitly and Validate rejects a missing one.
	Threshold int `yaml:"threshold"`

	// FineZones and Consolidation override the zone taxonomy. Empty
	// means the fixed default taxonomy {C,P,R1,R2,R3,S,S1,S2} ->
	// {C,P,R,S}.
	FineZones     []string          `yaml:"fine_zones,omitempty"`
	Consolidation map[string]string `yaml:"consolidation,omitempty"`
}

// SegmentationConfig carries the affix inventories used to extract the
// MIDDLE unit from an EVA token.
type SegmentationConfig struct {
	Prefixes []string `yaml:"prefixes"`
	Suffixes []string `yaml:"suffixes"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, text
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration. Engine.Threshold is
// deliberately zero: the spread cutoff is an experimental parameter
// with no settled value and must be set per run.
func DefaultConfig() *Config {
	return &Config{
		Name:    "voynich-sub021",
		Version: "0.2.1",

		Corpus: CorpusConfig{
			DatabasePath: "data/sub021_corpus.db",
		},

		Engine: EngineConfig{
			Threshold: 0,
		},

		Segmentation: SegmentationConfig{
			Prefixes: []string{"qo", "o", "y", "d", "s", "ch", "sh"},
			Suffixes: []string{"aiin", "ain", "iin", "in", "dy", "y"},
		},

		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Format:  "text",
			Dir:     ".sub021/logs",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("VOYREACH_CORPUS_DB"); path != "" {
		c.Corpus.DatabasePath = path
	}
	if raw := os.Getenv("VOYREACH_THRESHOLD"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.Engine.Threshold = n
		}
	}
	if level := os.Getenv("VOYREACH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if dir := os.Getenv("VOYREACH_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
}

// Taxonomy resolves the configured zone taxonomy, falling back to the
// fixed default when no override is present.
func (c *Config) Taxonomy() (types.Taxonomy, error) {
	if len(c.Engine.FineZones) == 0 && len(c.Engine.Consolidation) == 0 {
		return types.DefaultTaxonomy(), nil
	}
	if len(c.Engine.FineZones) == 0 || len(c.Engine.Consolidation) == 0 {
		return types.Taxonomy{}, fmt.Errorf("zone taxonomy override needs both fine_zones and consolidation")
	}

	fine := make([]types.FineZone, 0, len(c.Engine.FineZones))
	for _, f := range c.Engine.FineZones {
		fine = append(fine, types.FineZone(f))
	}
	consolidation := make(map[types.FineZone]types.Zone, len(c.Engine.Consolidation))
	for f, z := range c.Engine.Consolidation {
		consolidation[types.FineZone(f)] = types.Zone(z)
	}

	tax := types.NewTaxonomy(fine, consolidation)
	if err := tax.Validate(); err != nil {
		return types.Taxonomy{}, fmt.Errorf("invalid zone taxonomy: %w", err)
	}
	return tax, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.Threshold < 1 {
		return fmt.Errorf("engine threshold not configured (set engine.threshold or VOYREACH_THRESHOLD; the spread cutoff has no default)")
	}
	if c.Corpus.DatabasePath == "" {
		return fmt.Errorf("corpus database path not configured")
	}
	if _, err := c.Taxonomy(); err != nil {
		return err
	}
	return nil
}

// DefaultConfigPath returns the default path to sub021.yaml in the
// working directory.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "sub021.yaml"
	}
	return filepath.Join(cwd, "sub021.yaml")
}
