// Package config loads orbitsync settings from defaults, a YAML preset file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/orbitsync/alignment"
	"github.com/sarchlab/orbitsync/orderparam"
	"github.com/sarchlab/orbitsync/timing"
)

// EnvPrefix is the prefix of all environment overrides.
const EnvPrefix = "ORBITSYNC_"

// DefaultEnvFile is the dotenv file read by ApplyEnv when none is given.
const DefaultEnvFile = ".env"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config contains all orbitsync settings.
type Config struct {
	// Periods are the oscillator periods in milliseconds.
	Periods []float64 `yaml:"periods"`

	// Epsilon is the top detection tolerance.
	Epsilon float64 `yaml:"epsilon"`

	// ReferencePhase is added to every phase, -π/2 puts phase 0 at the top.
	ReferencePhase float64 `yaml:"reference_phase"`

	LongHistory  int `yaml:"long_history"`
	ShortHistory int `yaml:"short_history"`

	// FrameDelta is the simulated time between frames in milliseconds.
	FrameDelta float64 `yaml:"frame_delta"`

	// Duration is how long the headless run lasts in milliseconds.
	Duration float64 `yaml:"duration"`

	// RecordPath enables SQLite recording into RecordPath + ".sqlite3".
	RecordPath string `yaml:"record_path,omitempty"`

	// MonitorPort enables the monitoring server. Zero means disabled and
	// -1 means a random port.
	MonitorPort int  `yaml:"monitor_port,omitempty"`
	OpenBrowser bool `yaml:"open_browser,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Periods:        []float64{1000, 2000, 3000},
		Epsilon:        alignment.DefaultEpsilon,
		ReferencePhase: timing.ReferenceTop,
		LongHistory:    orderparam.DefaultLongHistory,
		ShortHistory:   orderparam.ShortHistory,
		FrameDelta:     16,
		Duration:       6000,
		LogLevel:       "info",
	}
}

// Load reads a YAML preset over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return c, nil
}

// ApplyEnv loads the dotenv file, if it exists, into the environment and
// applies the ORBITSYNC_* overrides. Variables already set in the
// environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	return c.applyOverrides()
}

func (c *Config) applyOverrides() error {
	if v, ok := lookup("PERIODS"); ok {
		periods, err := ParsePeriods(v)
		if err != nil {
			return err
		}
		c.Periods = periods
	}

	floats := []struct {
		name   string
		target *float64
	}{
		{"EPSILON", &c.Epsilon},
		{"REFERENCE_PHASE", &c.ReferencePhase},
		{"FRAME_DELTA", &c.FrameDelta},
		{"DURATION", &c.Duration},
	}
	for _, f := range floats {
		if err := overrideFloat(f.name, f.target); err != nil {
			return err
		}
	}

	ints := []struct {
		name   string
		target *int
	}{
		{"LONG_HISTORY", &c.LongHistory},
		{"SHORT_HISTORY", &c.ShortHistory},
		{"MONITOR_PORT", &c.MonitorPort},
	}
	for _, i := range ints {
		if err := overrideInt(i.name, i.target); err != nil {
			return err
		}
	}

	if v, ok := lookup("RECORD"); ok {
		c.RecordPath = v
	}

	if v, ok := lookup("OPEN_BROWSER"); ok {
		c.OpenBrowser = strings.EqualFold(v, "true") || v == "1"
	}

	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func overrideFloat(name string, target *float64) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
	}

	*target = f

	return nil
}

func overrideInt(name string, target *int) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
	}

	*target = n

	return nil
}

// ParsePeriods parses a comma separated list of periods in milliseconds.
func ParsePeriods(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	periods := make([]float64, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("config: period %q: %w", f, err)
		}

		periods = append(periods, p)
	}

	return periods, nil
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that the configuration can build a session.
func (c *Config) Validate() error {
	if len(c.Periods) == 0 {
		return fmt.Errorf("%w: no periods", ErrInvalidConfig)
	}

	for i, p := range c.Periods {
		if err := timing.Period(p).Validate(); err != nil {
			return fmt.Errorf("%w: period %d: %w", ErrInvalidConfig, i, err)
		}
	}

	if !(c.Epsilon > 0) || math.IsInf(c.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon must be positive, got %v",
			ErrInvalidConfig, c.Epsilon)
	}

	if !(c.FrameDelta > 0) || math.IsInf(c.FrameDelta, 0) {
		return fmt.Errorf("%w: frame_delta must be positive, got %v",
			ErrInvalidConfig, c.FrameDelta)
	}

	if c.Duration < 0 || math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be non-negative, got %v",
			ErrInvalidConfig, c.Duration)
	}

	if c.LongHistory < 1 || c.ShortHistory < 1 {
		return fmt.Errorf("%w: history capacities must be at least 1",
			ErrInvalidConfig)
	}

	if c.LogLevel != "" && !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: invalid log level: %s (valid: debug, info, "+
			"warn, error)", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}
