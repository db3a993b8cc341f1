// Package config loads registry settings from a yaml or json file with
// environment overrides, and builds a ready-to-use spi.Registry from them.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nativegroup/gospi/core/logger"
	"github.com/nativegroup/gospi/core/spi"
)

type Config struct {
	Descriptors DescriptorsConfig `json:"descriptors"`
	Logging     LoggingConfig     `json:"logging"`
}

// DescriptorsConfig locates descriptor resources on disk.
type DescriptorsConfig struct {
	// Dir is the directory prefix inside each root under which descriptors
	// are keyed by service type name.
	Dir string `json:"dir"`
	// Roots lists filesystem directories scanned for descriptor resources.
	Roots []string `json:"roots"`
}

// SetDefaults applies sane defaults.
func (c *DescriptorsConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = spi.DefaultDescriptorDir
	}
}

// Validate checks mandatory fields.
func (c DescriptorsConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("descriptors.dir is required")
	}
	if len(c.Roots) == 0 {
		return fmt.Errorf("at least one descriptor root is required")
	}
	return nil
}

// LoggingConfig controls the minimum log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level is one zerolog understands.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}

// Load reads the configuration file at path, chosen by extension, then
// applies GOSPI_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GOSPI_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gospi_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Descriptors.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Descriptors.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Registry builds an spi.Registry with one resource root per configured
// directory. Declarations and implementations are still registered by the
// host program.
func (c *Config) Registry(log logger.Logger) *spi.Registry {
	opts := []spi.Option{
		spi.WithLogger(log),
		spi.WithDescriptorDir(c.Descriptors.Dir),
	}
	for _, dir := range c.Descriptors.Roots {
		opts = append(opts, spi.WithRootDir(dir))
	}
	return spi.New(opts...)
}
