// Package stress converts baseline deviation into a stress verdict.
package stress

import (
	"fmt"

	"hrvmon/internal/core"
)

// Weights are the relative contributions of each metric to the score.
// Each must lie in [0,1].
type Weights struct {
	HR    float64 `yaml:"hr"`
	SDNN  float64 `yaml:"sdnn"`
	RMSSD float64 `yaml:"rmssd"`
	PNN50 float64 `yaml:"pnn50"`
}

// Scales are the percent-deviation magnitudes at which each metric's
// contribution saturates.
type Scales struct {
	HR    float64 `yaml:"hr"`
	SDNN  float64 `yaml:"sdnn"`
	RMSSD float64 `yaml:"rmssd"`
	PNN50 float64 `yaml:"pnn50"`
}

// Thresholds map a score onto a discrete level: score > High is High
// stress, score > Mild is mild stress.
type Thresholds struct {
	Mild float64 `yaml:"mild"`
	High float64 `yaml:"high"`
}

// Config carries the scoring policy. The defaults are empirically chosen
// constants carried over unchanged from the reference system.
type Config struct {
	Weights    Weights    `yaml:"weights"`
	Scales     Scales     `yaml:"scales"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// DefaultConfig returns the standard scoring policy:
// HR 30%, SDNN 25%, RMSSD 25%, pNN50 20%.
func DefaultConfig() Config {
	return Config{
		Weights:    Weights{HR: 0.30, SDNN: 0.25, RMSSD: 0.25, PNN50: 0.20},
		Scales:     Scales{HR: 15, SDNN: 20, RMSSD: 20, PNN50: 25},
		Thresholds: Thresholds{Mild: 0.4, High: 0.7},
	}
}

// Validate rejects invalid policy values. Out-of-range values are an
// error, never silently clamped.
func (c Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"weights.hr", c.Weights.HR},
		{"weights.sdnn", c.Weights.SDNN},
		{"weights.rmssd", c.Weights.RMSSD},
		{"weights.pnn50", c.Weights.PNN50},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("stress %s must be in [0,1], got %v", w.name, w.value)
		}
	}
	for _, s := range []struct {
		name  string
		value float64
	}{
		{"scales.hr", c.Scales.HR},
		{"scales.sdnn", c.Scales.SDNN},
		{"scales.rmssd", c.Scales.RMSSD},
		{"scales.pnn50", c.Scales.PNN50},
	} {
		if s.value <= 0 {
			return fmt.Errorf("stress %s must be positive, got %v", s.name, s.value)
		}
	}
	if c.Thresholds.Mild <= 0 || c.Thresholds.Mild >= 1 {
		return fmt.Errorf("stress thresholds.mild must be in (0,1), got %v", c.Thresholds.Mild)
	}
	if c.Thresholds.High <= 0 || c.Thresholds.High >= 1 {
		return fmt.Errorf("stress thresholds.high must be in (0,1), got %v", c.Thresholds.High)
	}
	if c.Thresholds.Mild >= c.Thresholds.High {
		return fmt.Errorf("stress thresholds.mild (%v) must be below thresholds.high (%v)",
			c.Thresholds.Mild, c.Thresholds.High)
	}
	return nil
}

// Scorer turns a change vector into a verdict.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with a validated config.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the weighted stress score in [0,1] and its level.
// Rising HR and falling SDNN/RMSSD/pNN50 are the stress indicators, so HR
// enters positively and the variability metrics enter negated.
func (s *Scorer) Score(ch core.ChangeVector) core.Verdict {
	score := clamp01(ch.HR/s.cfg.Scales.HR)*s.cfg.Weights.HR +
		clamp01(-ch.SDNN/s.cfg.Scales.SDNN)*s.cfg.Weights.SDNN +
		clamp01(-ch.RMSSD/s.cfg.Scales.RMSSD)*s.cfg.Weights.RMSSD +
		clamp01(-ch.PNN50/s.cfg.Scales.PNN50)*s.cfg.Weights.PNN50

	level := core.NotStressed
	switch {
	case score > s.cfg.Thresholds.High:
		level = core.High
	case score > s.cfg.Thresholds.Mild:
		level = core.Mild
	}
	return core.Verdict{Score: score, Level: level}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
