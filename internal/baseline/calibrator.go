// Package baseline establishes and persists the personal HRV reference.
package baseline

import (
	"time"

	"hrvmon/internal/core"
	"hrvmon/internal/hrv"
)

// State is the calibrator's phase. Complete is terminal for the session.
type State int

const (
	Calibrating State = iota
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "Complete"
	}
	return "Calibrating"
}

// SampleSource yields the samples inside a lookback window.
type SampleSource interface {
	Since(now time.Time, window time.Duration) []core.Sample
}

// Calibrator collects a fixed-duration warm-up window and freezes the four
// baseline metrics. If a complete persisted baseline is supplied via Load,
// calibration is skipped entirely.
type Calibrator struct {
	duration time.Duration
	timeout  time.Duration
	start    time.Time
	state    State
	metrics  core.BaselineMetrics
	flags    core.MetricFlags
}

// NewCalibrator starts a calibration window at start. The timeout is the
// safety limit after which Check reports core.ErrCalibrationTimeout.
func NewCalibrator(duration, timeout time.Duration, start time.Time) *Calibrator {
	return &Calibrator{
		duration: duration,
		timeout:  timeout,
		start:    start,
		state:    Calibrating,
	}
}

// Load accepts a previously computed baseline and jumps straight to
// Complete. Callers must have verified the baseline is complete (all four
// fields present); the file store does this on read.
func (c *Calibrator) Load(m core.BaselineMetrics) {
	c.metrics = m
	c.state = Complete
}

// Check advances the state machine on a new sample. Once the calibration
// window has elapsed it computes the baseline over the full window and
// transitions to Complete, returning done=true from then on. If the
// safety timeout elapses first, it returns core.ErrCalibrationTimeout.
func (c *Calibrator) Check(now time.Time, src SampleSource) (done bool, err error) {
	if c.state == Complete {
		return true, nil
	}

	elapsed := now.Sub(c.start)
	if elapsed >= c.duration {
		m, flags := hrv.Compute(src.Since(now, c.duration))
		c.metrics = core.BaselineMetrics{HR: m.HR, SDNN: m.SDNN, RMSSD: m.RMSSD, PNN50: m.PNN50}
		c.flags = flags
		c.state = Complete
		return true, nil
	}
	if elapsed >= c.timeout {
		return false, core.ErrCalibrationTimeout
	}
	return false, nil
}

// State returns the current phase.
func (c *Calibrator) State() State {
	return c.state
}

// Metrics returns the frozen baseline. Valid only once State is Complete.
func (c *Calibrator) Metrics() core.BaselineMetrics {
	return c.metrics
}

// Flags reports which baseline metrics were normalized from missing values.
func (c *Calibrator) Flags() core.MetricFlags {
	return c.flags
}

// Progress reports calibration completion in [0,1].
func (c *Calibrator) Progress(now time.Time) float64 {
	if c.state == Complete {
		return 1
	}
	if c.duration <= 0 {
		return 0
	}
	p := float64(now.Sub(c.start)) / float64(c.duration)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
