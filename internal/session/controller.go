// Package session orchestrates the calibration and monitoring lifecycle.
package session

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrvmon/internal/baseline"
	"hrvmon/internal/buffer"
	"hrvmon/internal/core"
	"hrvmon/internal/distraction"
	"hrvmon/internal/hrv"
	"hrvmon/internal/stress"
)

// Phase is the session's lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Calibrating
	Monitoring
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Calibrating:
		return "Calibrating"
	case Monitoring:
		return "Monitoring"
	case Stopped:
		return "Stopped"
	default:
		return "Idle"
	}
}

// Options configure a session. Zero-value optional fields get defaults.
type Options struct {
	BaselineDuration   time.Duration
	WindowDuration     time.Duration
	CalibrationTimeout time.Duration

	Stress      stress.Config
	Distraction distraction.Config

	Sink  core.Sink          // record consumer; nil means records are dropped
	Store core.BaselineStore // optional baseline persistence

	Clock  core.Clock  // defaults to RealClock
	Logger *log.Logger // defaults to stderr
}

// Controller drives one session through Idle, Calibrating, Monitoring and
// Stopped. Samples arrive on the ingestion path via OnSample; windows are
// closed by an internal timer loop, strictly in order, one at a time.
type Controller struct {
	opts   Options
	clock  core.Clock
	logger *log.Logger

	sessionID string
	buf       *buffer.SampleBuffer
	scorer    *stress.Scorer
	det       *distraction.Detector

	mu          sync.Mutex
	phase       Phase
	cal         *baseline.Calibrator
	baseline    core.BaselineMetrics
	windowStart time.Time
	lastRecord  *core.ResultRecord
	err         error

	calibrated chan struct{}
	stopCh     chan struct{}
	doneCh     chan struct{}
	stopOnce   sync.Once
}

// New validates the options and builds an idle controller.
func New(opts Options) (*Controller, error) {
	if opts.BaselineDuration <= 0 {
		return nil, fmt.Errorf("baseline duration must be positive, got %v", opts.BaselineDuration)
	}
	if opts.WindowDuration <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %v", opts.WindowDuration)
	}
	if opts.CalibrationTimeout <= opts.BaselineDuration {
		return nil, fmt.Errorf("calibration timeout (%v) must exceed baseline duration (%v)",
			opts.CalibrationTimeout, opts.BaselineDuration)
	}

	scorer, err := stress.NewScorer(opts.Stress)
	if err != nil {
		return nil, err
	}
	det, err := distraction.NewDetector(opts.Distraction)
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "hrvmon ", log.LstdFlags)
	}

	retention := opts.BaselineDuration
	if opts.WindowDuration > retention {
		retention = opts.WindowDuration
	}

	return &Controller{
		opts:       opts,
		clock:      clock,
		logger:     logger,
		sessionID:  uuid.NewString(),
		buf:        buffer.NewSampleBuffer(retention),
		scorer:     scorer,
		det:        det,
		phase:      Idle,
		calibrated: make(chan struct{}),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

// Start begins the session. A complete persisted baseline skips
// calibration and goes straight to Monitoring, emitting the baseline
// record immediately.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.phase != Idle {
		c.mu.Unlock()
		return fmt.Errorf("session already started (phase %v)", c.phase)
	}

	now := c.clock.Now()
	c.cal = baseline.NewCalibrator(c.opts.BaselineDuration, c.opts.CalibrationTimeout, now)

	if c.opts.Store != nil {
		m, ok, err := c.opts.Store.Load()
		switch {
		case err != nil:
			c.logger.Printf("baseline store unavailable, calibrating: %v", err)
		case ok:
			c.cal.Load(m)
		}
	}

	var rec *core.ResultRecord
	if c.cal.State() == baseline.Complete {
		c.baseline = c.cal.Metrics()
		c.phase = Monitoring
		c.windowStart = now
		r := c.baselineRecord(now, now)
		rec = &r
		close(c.calibrated)
		b := c.baseline
		c.logger.Printf("loaded existing baseline: hr=%.1f sdnn=%.1f rmssd=%.1f pnn50=%.1f%%",
			b.HR, b.SDNN, b.RMSSD, b.PNN50)
	} else {
		c.phase = Calibrating
		c.logger.Printf("starting baseline calibration (%v)", c.opts.BaselineDuration)
	}
	c.mu.Unlock()

	if rec != nil {
		c.emit(*rec)
	}
	go c.run()
	return nil
}

// OnSample delivers one transport notification. Never blocks beyond the
// bounded in-progress window computation.
func (c *Controller) OnSample(s core.Sample) {
	c.mu.Lock()
	if c.phase != Calibrating && c.phase != Monitoring {
		c.mu.Unlock()
		return
	}
	c.buf.Append(s)
	if c.phase != Calibrating {
		c.mu.Unlock()
		return
	}

	now := c.clock.Now()
	done, err := c.cal.Check(now, c.buf)
	if err != nil {
		c.err = err
		c.mu.Unlock()
		c.logger.Printf("calibration failed: %v", err)
		c.Stop()
		return
	}
	if !done {
		c.mu.Unlock()
		return
	}

	c.baseline = c.cal.Metrics()
	c.phase = Monitoring
	c.windowStart = now
	rec := c.baselineRecord(now.Add(-c.opts.BaselineDuration), now)
	b := c.baseline
	c.mu.Unlock()

	c.logger.Printf("baseline calibration complete: hr=%.1f sdnn=%.1f rmssd=%.1f pnn50=%.1f%%",
		b.HR, b.SDNN, b.RMSSD, b.PNN50)
	if c.opts.Store != nil {
		if err := c.opts.Store.Save(b); err != nil {
			c.logger.Printf("persisting baseline: %v", err)
		}
	}
	c.emit(rec)
	close(c.calibrated)
}

// OnDisconnect forces Monitoring (or Calibrating) to Stopped.
func (c *Controller) OnDisconnect() {
	c.logger.Printf("transport disconnected")
	c.Stop()
}

// Stop ends the session. Idempotent; a window already being closed
// completes and emits its record before the loop exits.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		started := c.phase != Idle
		c.phase = Stopped
		c.mu.Unlock()
		close(c.stopCh)
		if !started {
			close(c.doneCh)
		}
	})
}

// Done is closed once the window loop has fully wound down.
func (c *Controller) Done() <-chan struct{} {
	return c.doneCh
}

// Err reports the session's fatal condition, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Phase returns the current lifecycle state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SessionID returns this session's identifier.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Baseline returns the frozen reference. Meaningful once Monitoring.
func (c *Controller) Baseline() core.BaselineMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}

// CalibrationProgress reports calibration completion in [0,1].
func (c *Controller) CalibrationProgress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cal == nil {
		return 0
	}
	return c.cal.Progress(c.clock.Now())
}

// LastRecord returns the most recent window record, if one exists.
func (c *Controller) LastRecord() (core.ResultRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRecord == nil {
		return core.ResultRecord{}, false
	}
	return *c.lastRecord, true
}

// run owns the timer path: the calibration deadline first, then the
// window-closing loop. Windows close strictly in sequence.
func (c *Controller) run() {
	defer close(c.doneCh)

	select {
	case <-c.stopCh:
		return
	case <-c.calibrated:
	case <-time.After(c.opts.CalibrationTimeout):
		if c.failCalibration() {
			return
		}
		// Calibration won the race against the deadline; keep going.
	}

	timer := time.NewTimer(c.opts.WindowDuration)
	defer timer.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-timer.C:
			c.closeWindow(c.clock.Now())
			// Next window is measured from this close, not wall-aligned.
			timer.Reset(c.opts.WindowDuration)
		}
	}
}

// failCalibration marks the session failed unless calibration completed
// in the meantime. Returns true when the session was stopped.
func (c *Controller) failCalibration() bool {
	c.mu.Lock()
	if c.phase != Calibrating {
		c.mu.Unlock()
		return false
	}
	c.err = core.ErrCalibrationTimeout
	c.mu.Unlock()
	c.logger.Printf("calibration did not complete within %v", c.opts.CalibrationTimeout)
	c.Stop()
	return true
}

// closeWindow computes one window end to end: metrics, deviation, verdict,
// detector update, record emission. All-or-nothing: it runs entirely under
// the session lock, so a concurrent Stop sees either no window or a
// finished one.
func (c *Controller) closeWindow(now time.Time) {
	c.mu.Lock()
	if c.phase != Monitoring {
		c.mu.Unlock()
		return
	}

	start := c.windowStart
	samples := c.buf.Since(now, now.Sub(start))
	m, flags := hrv.Compute(samples)
	changes := hrv.PercentChange(m, c.baseline)
	verdict := c.scorer.Score(changes)
	distracted := c.det.Observe(verdict.Level, changes.HR)

	rec := core.ResultRecord{
		SessionID:      c.sessionID,
		WindowStart:    start,
		WindowEnd:      now,
		Metrics:        m,
		Missing:        flags,
		Changes:        changes,
		Stress:         verdict,
		Streak:         c.det.Streak(),
		Distraction:    distracted,
		Interpretation: interpretation(verdict.Level, distracted),
		Feedback:       feedback(verdict.Level, distracted),
	}
	c.windowStart = now
	c.lastRecord = &rec
	c.mu.Unlock()

	suffix := ""
	if distracted {
		suffix = " !!! DISTRACTION !!!"
	}
	c.logger.Printf("window %v -> stress=%s (score=%.2f, streak=%.1f)%s",
		now.Sub(start).Round(time.Second), verdict.Level, verdict.Score, rec.Streak, suffix)
	c.emit(rec)
}

func (c *Controller) baselineRecord(start, end time.Time) core.ResultRecord {
	b := c.baseline
	return core.ResultRecord{
		SessionID:      c.sessionID,
		WindowStart:    start,
		WindowEnd:      end,
		IsBaseline:     true,
		Baseline:       &b,
		Metrics:        core.WindowMetrics{HR: b.HR, SDNN: b.SDNN, RMSSD: b.RMSSD, PNN50: b.PNN50},
		Missing:        c.cal.Flags(),
		Interpretation: "Baseline measurements established as reference point for stress detection",
		Feedback:       "Baseline calibration complete. Reference HRV metrics set.",
	}
}

// emit hands one record to the sink. Sink failures are logged only; a
// lost record must not stall the pipeline.
func (c *Controller) emit(rec core.ResultRecord) {
	if c.opts.Sink == nil {
		return
	}
	if err := c.opts.Sink.Emit(rec); err != nil {
		c.logger.Printf("result sink error: %v", err)
	}
}

func interpretation(level core.Level, distracted bool) string {
	switch level {
	case core.High:
		if distracted {
			return "High stress detected with potential distraction. HRV metrics show significant deviation from baseline."
		}
		return "High stress detected. HRV metrics show significant deviation from baseline."
	case core.Mild:
		return "Mild stress detected. HRV metrics show moderate deviation from baseline."
	default:
		return "Normal stress levels. HRV metrics are close to baseline."
	}
}

func feedback(level core.Level, distracted bool) string {
	switch {
	case distracted:
		return "Consider taking a short break to refocus attention. Distraction detected."
	case level == core.High:
		return "Consider stress reduction techniques like deep breathing."
	case level == core.Mild:
		return "Be mindful of increasing stress levels."
	default:
		return "Current stress levels are within normal range."
	}
}
