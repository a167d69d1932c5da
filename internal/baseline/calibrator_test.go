package baseline

import (
	"errors"
	"testing"
	"time"

	"hrvmon/internal/buffer"
	"hrvmon/internal/core"
)

func feedSteady(b *buffer.SampleBuffer, start time.Time, seconds int, hr float64, rr float64) time.Time {
	var last time.Time
	for i := 0; i < seconds; i++ {
		last = start.Add(time.Duration(i) * time.Second)
		b.Append(core.Sample{Timestamp: last, HeartRate: hr, RRIntervals: []float64{rr}})
	}
	return last
}

func TestCheck_NotDoneBeforeDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCalibrator(60*time.Second, 2*time.Minute, start)
	b := buffer.NewSampleBuffer(0)
	feedSteady(b, start, 30, 70, 857)

	done, err := c.Check(start.Add(30*time.Second), b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Error("calibration should not complete before the window elapses")
	}
	if c.State() != Calibrating {
		t.Errorf("expected Calibrating, got %v", c.State())
	}
}

func TestCheck_CompletesAfterDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCalibrator(60*time.Second, 2*time.Minute, start)
	b := buffer.NewSampleBuffer(0)
	feedSteady(b, start, 61, 70, 857)

	done, err := c.Check(start.Add(60*time.Second), b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("calibration should complete once the window elapses")
	}
	if c.State() != Complete {
		t.Errorf("expected Complete, got %v", c.State())
	}

	m := c.Metrics()
	if m.HR != 70 {
		t.Errorf("expected baseline HR 70, got %v", m.HR)
	}
	if m.SDNN != 0 {
		t.Errorf("steady RR intervals should give SDNN 0, got %v", m.SDNN)
	}
	if c.Flags().Any() {
		t.Errorf("expected no missing baseline metrics, got %+v", c.Flags())
	}
}

func TestCheck_CompleteIsTerminal(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCalibrator(60*time.Second, 2*time.Minute, start)
	b := buffer.NewSampleBuffer(0)
	feedSteady(b, start, 61, 70, 857)

	if done, _ := c.Check(start.Add(60*time.Second), b); !done {
		t.Fatal("expected completion")
	}
	frozen := c.Metrics()

	// Further samples and checks must not alter the frozen baseline.
	feedSteady(b, start.Add(61*time.Second), 10, 110, 550)
	if done, err := c.Check(start.Add(75*time.Second), b); !done || err != nil {
		t.Fatalf("expected done with no error, got done=%v err=%v", done, err)
	}
	if c.Metrics() != frozen {
		t.Errorf("baseline changed after completion: %+v vs %+v", c.Metrics(), frozen)
	}
}

func TestCheck_Timeout(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := buffer.NewSampleBuffer(0)

	// Timeout fires when the safety limit elapses before the calibration
	// window can complete.
	c := NewCalibrator(3*time.Minute, 2*time.Minute, start)
	done, err := c.Check(start.Add(2*time.Minute), b)
	if done {
		t.Fatal("expected calibration not done")
	}
	if !errors.Is(err, core.ErrCalibrationTimeout) {
		t.Errorf("expected ErrCalibrationTimeout, got %v", err)
	}
}

func TestLoad_SkipsCalibration(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCalibrator(60*time.Second, 2*time.Minute, start)

	m := core.BaselineMetrics{HR: 68, SDNN: 45, RMSSD: 38, PNN50: 22}
	c.Load(m)

	if c.State() != Complete {
		t.Errorf("expected Complete after Load, got %v", c.State())
	}
	if c.Metrics() != m {
		t.Errorf("expected loaded metrics %+v, got %+v", m, c.Metrics())
	}

	done, err := c.Check(start, buffer.NewSampleBuffer(0))
	if !done || err != nil {
		t.Errorf("Check after Load should report done, got done=%v err=%v", done, err)
	}
}

func TestProgress(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCalibrator(60*time.Second, 2*time.Minute, start)

	if p := c.Progress(start); p != 0 {
		t.Errorf("expected progress 0 at start, got %v", p)
	}
	if p := c.Progress(start.Add(30 * time.Second)); p != 0.5 {
		t.Errorf("expected progress 0.5, got %v", p)
	}
	if p := c.Progress(start.Add(90 * time.Second)); p != 1 {
		t.Errorf("expected progress capped at 1, got %v", p)
	}

	c.Load(core.BaselineMetrics{HR: 70, SDNN: 1, RMSSD: 1, PNN50: 1})
	if p := c.Progress(start); p != 1 {
		t.Errorf("expected progress 1 once complete, got %v", p)
	}
}
