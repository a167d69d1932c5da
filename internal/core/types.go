// Package core defines the shared data model and boundary interfaces for hrvmon.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sample is one beat-to-beat reading delivered by the transport.
// Samples are immutable after creation and owned by the SampleBuffer
// once appended.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	HeartRate   float64   `json:"heartRate"`             // bpm
	RRIntervals []float64 `json:"rrIntervals,omitempty"` // ms
}

// BaselineMetrics are the four reference HRV metrics frozen at the end of
// calibration. Read-only for the remainder of the session.
type BaselineMetrics struct {
	HR    float64 `json:"hr"`
	SDNN  float64 `json:"sdnn"`  // ms
	RMSSD float64 `json:"rmssd"` // ms
	PNN50 float64 `json:"pnn50"` // percent
}

// WindowMetrics are the same four metrics computed over one monitoring window.
type WindowMetrics struct {
	HR    float64 `json:"hr"`
	SDNN  float64 `json:"sdnn"`
	RMSSD float64 `json:"rmssd"`
	PNN50 float64 `json:"pnn50"`
}

// MetricFlags marks metrics that could not be computed from the window's
// samples and were normalized to zero. A flagged zero means "no signal",
// not "no deviation".
type MetricFlags struct {
	HR    bool `json:"hr,omitempty"`
	SDNN  bool `json:"sdnn,omitempty"`
	RMSSD bool `json:"rmssd,omitempty"`
	PNN50 bool `json:"pnn50,omitempty"`
}

// Any reports whether at least one metric is flagged as missing.
func (f MetricFlags) Any() bool {
	return f.HR || f.SDNN || f.RMSSD || f.PNN50
}

// ChangeVector is the percent deviation of a window's metrics from baseline.
type ChangeVector struct {
	HR    float64 `json:"hr"`
	SDNN  float64 `json:"sdnn"`
	RMSSD float64 `json:"rmssd"`
	PNN50 float64 `json:"pnn50"`
}

// Level is the discrete stress classification of one window.
type Level int

const (
	NotStressed Level = iota
	Mild
	High
)

func (l Level) String() string {
	switch l {
	case High:
		return "High"
	case Mild:
		return "Mild"
	default:
		return "Not Stressed"
	}
}

// MarshalJSON renders the level as its display string.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the display strings produced by MarshalJSON.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "High":
		*l = High
	case "Mild":
		*l = Mild
	case "Not Stressed":
		*l = NotStressed
	default:
		return fmt.Errorf("unknown stress level %q", s)
	}
	return nil
}

// Verdict is the normalized stress score and its discrete level.
type Verdict struct {
	Score float64 `json:"score"`
	Level Level   `json:"level"`
}

// ResultRecord is the unit handed to the result sink, one per completed
// window plus one synthetic record when calibration completes. Immutable
// once emitted.
type ResultRecord struct {
	SessionID      string           `json:"sessionId"`
	WindowStart    time.Time        `json:"windowStart"`
	WindowEnd      time.Time        `json:"windowEnd"`
	IsBaseline     bool             `json:"isBaseline"`
	Baseline       *BaselineMetrics `json:"baselineMetrics,omitempty"`
	Metrics        WindowMetrics    `json:"currentMetrics"`
	Missing        MetricFlags      `json:"missingMetrics,omitempty"`
	Changes        ChangeVector     `json:"changesFromBaseline"`
	Stress         Verdict          `json:"stress"`
	Streak         float64          `json:"streak"`
	Distraction    bool             `json:"distraction"`
	Interpretation string           `json:"interpretation,omitempty"`
	Feedback       string           `json:"feedback,omitempty"`
}

// ErrCalibrationTimeout is returned when calibration does not complete
// within the configured safety timeout. Fatal to the session.
var ErrCalibrationTimeout = errors.New("calibration timeout")

// Sink receives each emitted ResultRecord. Sink failures are logged by the
// caller and never stall the pipeline.
type Sink interface {
	Emit(ResultRecord) error
}

// BaselineStore persists baseline metrics across sessions.
type BaselineStore interface {
	Save(BaselineMetrics) error
	// Load returns the stored baseline and whether a complete one exists.
	Load() (BaselineMetrics, bool, error)
}

// SampleHandler is the ingestion-facing surface of a session.
type SampleHandler interface {
	OnSample(Sample)
	OnDisconnect()
}
