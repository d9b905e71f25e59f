// Package config loads the optional rendertree.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	rterrors "github.com/go-drift/rendertree/pkg/errors"
	"github.com/go-drift/rendertree/pkg/graphics"
)

// FileName is the name LoadOptional looks for.
const FileName = "rendertree.yaml"

// SupportedMajor is the major schema version this package reads.
const SupportedMajor = "v1"

// Defaults applied to fields a file leaves unset.
const (
	DefaultMaxLayoutPasses = 8
	DefaultLogLevel        = "warn"
	DefaultFrameWidth      = 800
	DefaultFrameHeight     = 600
)

// Config represents rendertree.yaml.
type Config struct {
	// Version is the schema version, for example "v1.0.0". Empty means the
	// current version.
	Version  string   `yaml:"version,omitempty"`
	Pipeline Pipeline `yaml:"pipeline"`
	Frame    Frame    `yaml:"frame"`
}

// Pipeline configures render owners.
type Pipeline struct {
	MaxLayoutPasses int    `yaml:"max_layout_passes,omitempty"`
	DebugChecks     bool   `yaml:"debug_checks"`
	LogLevel        string `yaml:"log_level,omitempty"`
}

// Frame is the size of the root of a rendered frame.
type Frame struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// Size returns the frame size.
func (f Frame) Size() graphics.Size {
	return graphics.Size{Width: f.Width, Height: f.Height}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Pipeline: Pipeline{
			MaxLayoutPasses: DefaultMaxLayoutPasses,
			DebugChecks:     true,
			LogLevel:        DefaultLogLevel,
		},
		Frame: Frame{Width: DefaultFrameWidth, Height: DefaultFrameHeight},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("config.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data)
}

// LoadOptional reads rendertree.yaml from dir if present and returns the
// defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes and validates a configuration document. Fields the document
// omits keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, configError("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Version = strings.TrimSpace(c.Version)
	c.Pipeline.LogLevel = strings.ToLower(strings.TrimSpace(c.Pipeline.LogLevel))
	if c.Pipeline.LogLevel == "" {
		c.Pipeline.LogLevel = DefaultLogLevel
	}
	if c.Pipeline.MaxLayoutPasses == 0 {
		c.Pipeline.MaxLayoutPasses = DefaultMaxLayoutPasses
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Version != "" {
		if !semver.IsValid(c.Version) {
			return configError("config.Validate", fmt.Errorf("version %q is not a semantic version", c.Version))
		}
		if major := semver.Major(c.Version); major != SupportedMajor {
			return configError("config.Validate", fmt.Errorf("unsupported version %s: want %s.x", c.Version, SupportedMajor))
		}
	}
	if c.Pipeline.MaxLayoutPasses < 1 {
		return configError("config.Validate", fmt.Errorf("max_layout_passes must be at least 1, got %d", c.Pipeline.MaxLayoutPasses))
	}
	if _, err := parseLevel(c.Pipeline.LogLevel); err != nil {
		return configError("config.Validate", err)
	}
	for _, f := range [...]struct {
		name string
		v    float64
	}{{"width", c.Frame.Width}, {"height", c.Frame.Height}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return configError("config.Validate", fmt.Errorf("frame %s must be a positive number, got %v", f.name, f.v))
		}
	}
	return nil
}

// SlogLevel returns the configured log level. Unknown levels map to warn.
func (p Pipeline) SlogLevel() slog.Level {
	level, err := parseLevel(p.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", s)
}

func configError(op string, err error) *rterrors.RenderError {
	return rterrors.New(op, rterrors.KindConfig, err)
}
