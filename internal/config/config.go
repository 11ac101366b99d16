// Package config resolves runtime settings from defaults, an optional
// YAML file and DAILYDRILL_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/dailydrill/internal/adaptive"
	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/batch"
	"github.com/abhisek/dailydrill/internal/recommend"
)

// Config holds all runtime settings.
type Config struct {
	// DBPath is the SQLite file. Empty means the XDG default.
	DBPath string `yaml:"db_path"`
	// User is the learner id used when --user is not given.
	User string `yaml:"user"`
	// Timezone decides calendar days and batch expiry. Values: an IANA
	// name, "Local" or "UTC".
	Timezone string `yaml:"timezone"`
	// AnalyzerMode selects the level classifier: "breadth" or "simple".
	AnalyzerMode string `yaml:"analyzer_mode"`

	Log       LogConfig        `yaml:"log"`
	Batch     batch.Config     `yaml:"batch"`
	Recommend recommend.Config `yaml:"recommend"`
	Adaptive  adaptive.Config  `yaml:"adaptive"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode  string `yaml:"mode"`  // "dev" or "prod"
	Level string `yaml:"level"` // zap level name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		User:         "default",
		Timezone:     "Local",
		AnalyzerMode: string(analysis.ModeBreadthAware),
		Log: LogConfig{
			Mode:  "dev",
			Level: "warn",
		},
		Batch:     batch.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Adaptive:  adaptive.DefaultConfig(),
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(c)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DAILYDRILL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("DAILYDRILL_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("DAILYDRILL_TZ"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("DAILYDRILL_ANALYZER"); v != "" {
		c.AnalyzerMode = v
	}
	if v := os.Getenv("DAILYDRILL_LIST"); v != "" {
		c.Recommend.List = v
	}
	if v := os.Getenv("DAILYDRILL_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("DAILYDRILL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DAILYDRILL_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DAILYDRILL_COUNT: %w", err)
		}
		c.Batch.TargetCount = n
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.User) == "" {
		errs = append(errs, errors.New("user must not be empty"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := analysis.ParseMode(c.AnalyzerMode); err != nil {
		errs = append(errs, err)
	}
	if c.Recommend.MaxCount <= 0 {
		errs = append(errs, fmt.Errorf("recommend.max_count must be positive, got %d", c.Recommend.MaxCount))
	}
	if c.Batch.TargetCount <= 0 || c.Batch.TargetCount > c.Recommend.MaxCount {
		errs = append(errs, fmt.Errorf("batch.target_count must be between 1 and %d, got %d", c.Recommend.MaxCount, c.Batch.TargetCount))
	}
	if c.Batch.MinCompleted <= 0 {
		errs = append(errs, fmt.Errorf("batch.min_completed must be positive, got %d", c.Batch.MinCompleted))
	}
	if c.Batch.StaleAfter < 0 || c.Batch.Cooldown < 0 || c.Adaptive.Cooldown < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.Adaptive.PoorThreshold < 0 || c.Adaptive.GoodThreshold > 1 || c.Adaptive.PoorThreshold >= c.Adaptive.GoodThreshold {
		errs = append(errs, fmt.Errorf("adaptive thresholds must satisfy 0 <= poor < good <= 1, got %v and %v",
			c.Adaptive.PoorThreshold, c.Adaptive.GoodThreshold))
	}
	if c.Adaptive.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("adaptive.tolerance must be positive, got %v", c.Adaptive.Tolerance))
	}
	return errors.Join(errs...)
}
