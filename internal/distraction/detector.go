// Package distraction accumulates stress verdicts into a distraction signal.
package distraction

import (
	"fmt"
	"math"

	"hrvmon/internal/core"
)

// Config carries the hysteresis policy. Defaults are the reference
// system's empirically chosen constants.
type Config struct {
	// BaseThreshold is the streak value at which distraction is declared.
	BaseThreshold float64 `yaml:"baseThreshold"`
	// ThresholdFloor is the lowest the effective threshold may drop.
	ThresholdFloor float64 `yaml:"thresholdFloor"`
	// VolatilityDrop is subtracted from the threshold when the window's
	// absolute HR change exceeds VolatilityLimit percent.
	VolatilityDrop  float64 `yaml:"volatilityDrop"`
	VolatilityLimit float64 `yaml:"volatilityLimit"`
	// Streak increments per window verdict, and the decay applied on a
	// calm window.
	HighIncrement float64 `yaml:"highIncrement"`
	MildIncrement float64 `yaml:"mildIncrement"`
	CalmDecay     float64 `yaml:"calmDecay"`
}

// DefaultConfig returns the standard hysteresis policy.
func DefaultConfig() Config {
	return Config{
		BaseThreshold:   4.0,
		ThresholdFloor:  1.0,
		VolatilityDrop:  1.0,
		VolatilityLimit: 20,
		HighIncrement:   1.5,
		MildIncrement:   0.7,
		CalmDecay:       0.5,
	}
}

// Validate rejects invalid policy values.
func (c Config) Validate() error {
	if c.BaseThreshold <= 0 {
		return fmt.Errorf("distraction baseThreshold must be positive, got %v", c.BaseThreshold)
	}
	if c.ThresholdFloor <= 0 || c.ThresholdFloor > c.BaseThreshold {
		return fmt.Errorf("distraction thresholdFloor must be in (0, baseThreshold], got %v", c.ThresholdFloor)
	}
	if c.VolatilityDrop < 0 {
		return fmt.Errorf("distraction volatilityDrop must be non-negative, got %v", c.VolatilityDrop)
	}
	if c.VolatilityLimit <= 0 {
		return fmt.Errorf("distraction volatilityLimit must be positive, got %v", c.VolatilityLimit)
	}
	if c.HighIncrement <= 0 || c.MildIncrement <= 0 {
		return fmt.Errorf("distraction streak increments must be positive, got high=%v mild=%v",
			c.HighIncrement, c.MildIncrement)
	}
	if c.CalmDecay < 0 {
		return fmt.Errorf("distraction calmDecay must be non-negative, got %v", c.CalmDecay)
	}
	return nil
}

// Detector is a leaky accumulator over successive window verdicts.
// Isolated detections do not trigger distraction; sustained or severe
// stress does, and calm windows gradually forgive past stress rather
// than resetting it. One instance per session; windows must be applied
// in chronological order.
type Detector struct {
	cfg    Config
	streak float64
}

// NewDetector creates a detector with a validated config.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Observe applies one window's verdict and reports whether the
// accumulated streak now crosses the effective distraction threshold.
// hrChange is the window's percent HR deviation from baseline; a highly
// volatile heart rate lowers the bar.
func (d *Detector) Observe(level core.Level, hrChange float64) bool {
	switch level {
	case core.High:
		d.streak += d.cfg.HighIncrement
	case core.Mild:
		d.streak += d.cfg.MildIncrement
	default:
		d.streak = math.Max(0, d.streak-d.cfg.CalmDecay)
	}

	threshold := d.cfg.BaseThreshold
	if math.Abs(hrChange) > d.cfg.VolatilityLimit {
		threshold -= d.cfg.VolatilityDrop
		if threshold < d.cfg.ThresholdFloor {
			threshold = d.cfg.ThresholdFloor
		}
	}
	return d.streak >= threshold
}

// Streak returns the current accumulator value.
func (d *Detector) Streak() float64 {
	return d.streak
}

// Reset clears the accumulator for a new session.
func (d *Detector) Reset() {
	d.streak = 0
}
