// Package simulate generates plausible (non-clinical) RR interval
// streams for exercising the pipeline without a physical sensor.
package simulate

import (
	"math"
	"math/rand"
	"sync"
)

// RRSim produces beat-to-beat RR intervals around a target heart rate.
// The variability is a slow sinusoidal wobble plus uniform noise, which
// is enough to move SDNN, RMSSD and pNN50 in realistic directions.
type RRSim struct {
	mu          sync.Mutex
	hrBPM       float64
	variability float64 // peak-to-mean deviation, ms
	phase       float64
	rng         *rand.Rand
}

// NewRRSim builds a simulator. hrBPM typical 50-120, variability is the
// RR wobble amplitude in milliseconds (0 gives a metronome heart).
func NewRRSim(hrBPM, variability float64, seed int64) *RRSim {
	return &RRSim{
		hrBPM:       hrBPM,
		variability: variability,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next RR interval in milliseconds and the heart rate
// that interval implies.
func (s *RRSim) Next() (rrMS float64, hrBPM int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mean := 60000.0 / s.hrBPM

	// slow respiratory-style wobble, roughly one cycle per 12 beats
	s.phase += 2 * math.Pi / 12
	if s.phase >= 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	wobble := s.variability * math.Sin(s.phase)
	noise := s.variability * 0.4 * (2*s.rng.Float64() - 1)

	rrMS = mean + wobble + noise
	if rrMS < 250 {
		rrMS = 250 // 240 bpm ceiling, keeps intervals physiological
	}
	return rrMS, int(math.Round(60000.0 / rrMS))
}

// SetHeartRate retargets the mean heart rate.
func (s *RRSim) SetHeartRate(hrBPM float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hrBPM > 0 {
		s.hrBPM = hrBPM
	}
}

// SetVariability retargets the RR wobble amplitude in milliseconds.
func (s *RRSim) SetVariability(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms >= 0 {
		s.variability = ms
	}
}

// HeartRate reports the current target heart rate.
func (s *RRSim) HeartRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hrBPM
}
