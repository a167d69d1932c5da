// Package config handles YAML configuration parsing and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hrvmon/internal/distraction"
	"hrvmon/internal/stress"
)

// Config is the root configuration structure. Load starts from Default
// and overlays the file, so a partial file only overrides what it names.
type Config struct {
	Session     SessionConfig      `yaml:"session"`
	Stress      stress.Config      `yaml:"stress"`
	Distraction distraction.Config `yaml:"distraction"`
	Baseline    BaselineConfig     `yaml:"baseline"`
	Results     ResultsConfig      `yaml:"results"`
	NATS        NATSConfig         `yaml:"nats"`
}

// SessionConfig controls the session's timing.
type SessionConfig struct {
	BaselineDuration   time.Duration `yaml:"baselineDuration"`
	WindowDuration     time.Duration `yaml:"windowDuration"`
	CalibrationTimeout time.Duration `yaml:"calibrationTimeout"`
}

// BaselineConfig locates the persisted calibration.
type BaselineConfig struct {
	File string `yaml:"file"`
}

// ResultsConfig controls the result hand-off file.
type ResultsConfig struct {
	File string `yaml:"file"`
}

// NATSConfig locates the live transport.
type NATSConfig struct {
	URL            string `yaml:"url"`
	SampleSubject  string `yaml:"sampleSubject"`
	ResultSubject  string `yaml:"resultSubject"`
	PublishResults bool   `yaml:"publishResults"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Session: SessionConfig{
			BaselineDuration:   60 * time.Second,
			WindowDuration:     30 * time.Second,
			CalibrationTimeout: 2 * time.Minute,
		},
		Stress:      stress.DefaultConfig(),
		Distraction: distraction.DefaultConfig(),
		Baseline:    BaselineConfig{File: "baseline_calibration.json"},
		Results:     ResultsConfig{File: "watch_data.json"},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			SampleSubject: "hrv.samples",
			ResultSubject: "hrv.results",
		},
	}
}

// Load reads and parses a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects invalid values. Nothing is clamped.
func (c Config) Validate() error {
	if c.Session.BaselineDuration <= 0 {
		return fmt.Errorf("session baselineDuration must be positive, got %v", c.Session.BaselineDuration)
	}
	if c.Session.WindowDuration <= 0 {
		return fmt.Errorf("session windowDuration must be positive, got %v", c.Session.WindowDuration)
	}
	if c.Session.CalibrationTimeout <= c.Session.BaselineDuration {
		return fmt.Errorf("session calibrationTimeout (%v) must exceed baselineDuration (%v)",
			c.Session.CalibrationTimeout, c.Session.BaselineDuration)
	}
	if err := c.Stress.Validate(); err != nil {
		return err
	}
	if err := c.Distraction.Validate(); err != nil {
		return err
	}
	return nil
}
