package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treefs/treefs/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultChunkSize is the size of each file data chunk in bytes
	DefaultChunkSize = 4096

	// DefaultClearPrealloc is the number of empty chunks a file keeps after
	// it is cleared, so the first writes after a truncating open don't pay
	// for repeated tiny allocations
	DefaultClearPrealloc = 4

	// DefaultMaxBytes is the total chunk-capacity quota across the whole
	// tree; 0 means unlimited
	DefaultMaxBytes = 0
)

// Cli verbosity bounds, mapped onto internal log levels by [util.LevelFromVerbosity]
const (
	ErrorVerbose = 1
	TraceVerbose = 5
)

// Config contains runtime configuration values for the virtual filesystem.
type Config struct {
	ChunkSize     int           // Size of each file data chunk in bytes (Default 4096)
	ClearPrealloc int           // Empty chunks kept after a file is cleared (Default 4)
	MaxBytes      int64         // Total chunk-capacity quota in bytes, 0 = unlimited (Default 0)
	LogLvl        util.LogLevel // Internal log level (Default info)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	ChunkSize     *int   `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	ClearPrealloc *int   `yaml:"clear_prealloc,omitempty" json:"clear_prealloc,omitempty"`
	MaxBytes      *int64 `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`

	// LogLvl is a verbosity between 1 (error) and 5 (trace)
	LogLvl *int `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		ChunkSize:     DefaultChunkSize,
		ClearPrealloc: DefaultClearPrealloc,
		MaxBytes:      DefaultMaxBytes,
		LogLvl:        util.InfoLevel,
	}
}

// NewConfig creates a Config from defaults with the override applied on top.
// A nil override returns the defaults unchanged.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.ChunkSize != nil {
		c.ChunkSize = *override.ChunkSize
	}
	if override.ClearPrealloc != nil {
		c.ClearPrealloc = *override.ClearPrealloc
	}
	if override.MaxBytes != nil {
		c.MaxBytes = *override.MaxBytes
	}
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
