// Package config loads the optional repeater.yaml or repeater.toml file that
// tunes the scheduler budget, the realization buffer and logging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/repeater/pkg/scheduler"
)

// CurrentVersion is the configuration format version written by Default.
const CurrentVersion = "1.0"

// DefaultCacheLength is the realization buffer used when none is configured.
const DefaultCacheLength = 2.0

// FileNames lists the files LoadOptional looks for, in order.
var FileNames = []string{"repeater.yaml", "repeater.yml", "repeater.toml"}

// ErrUnsupportedFormat is returned for a file that is neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config represents the optional repeater configuration.
type Config struct {
	Version   string          `yaml:"version" toml:"version"`
	Scheduler SchedulerConfig `yaml:"scheduler" toml:"scheduler"`
	Viewport  ViewportConfig  `yaml:"viewport" toml:"viewport"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// SchedulerConfig bounds the phased work done per frame. BudgetMillis wins
// over TargetFPS; without either the budget is half a 60 fps frame.
type SchedulerConfig struct {
	BudgetMillis float64 `yaml:"budget_ms,omitempty" toml:"budget_ms,omitempty"`
	TargetFPS    int     `yaml:"target_fps,omitempty" toml:"target_fps,omitempty"`
}

// ViewportConfig contains realization settings.
type ViewportConfig struct {
	CacheLength *float64 `yaml:"cache_length,omitempty" toml:"cache_length,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Version: CurrentVersion}
}

// Load reads the file at path. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse %s: unknown key %q", filepath.Base(path), undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadOptional reads the first of FileNames present in dir, or returns
// Default when there is none.
func LoadOptional(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		return Load(path)
	}
	return Default(), nil
}

// Validate checks the version and the value ranges.
func (c *Config) Validate() error {
	v := canonicalVersion(c.Version)
	if !semver.IsValid(v) {
		return fmt.Errorf("version %q is not a semantic version", c.Version)
	}
	if want := semver.Major(canonicalVersion(CurrentVersion)); semver.Major(v) != want {
		return fmt.Errorf("version %q is not supported (want %s.x)", c.Version, strings.TrimPrefix(want, "v"))
	}
	if c.Scheduler.BudgetMillis < 0 {
		return fmt.Errorf("scheduler.budget_ms must not be negative, got %v", c.Scheduler.BudgetMillis)
	}
	if c.Scheduler.TargetFPS < 0 {
		return fmt.Errorf("scheduler.target_fps must not be negative, got %d", c.Scheduler.TargetFPS)
	}
	if c.Viewport.CacheLength != nil && *c.Viewport.CacheLength < 0 {
		return fmt.Errorf("viewport.cache_length must not be negative, got %v", *c.Viewport.CacheLength)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Budget returns the per-frame scheduler budget.
func (c *Config) Budget() time.Duration {
	if c.Scheduler.BudgetMillis > 0 {
		return time.Duration(c.Scheduler.BudgetMillis * float64(time.Millisecond))
	}
	return scheduler.BudgetForFPS(c.Scheduler.TargetFPS)
}

// CacheLength returns the realization buffer, DefaultCacheLength if unset.
func (c *Config) CacheLength() float64 {
	if c.Viewport.CacheLength == nil {
		return DefaultCacheLength
	}
	return *c.Viewport.CacheLength
}

// LogLevel returns the configured level, info if unset.
func (c *Config) LogLevel() (log.Level, error) {
	if strings.TrimSpace(c.Log.Level) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.TrimSpace(c.Log.Level))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// canonicalVersion accepts "1", "1.2" and "v1.2.3" forms.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
