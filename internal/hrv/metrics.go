// Package hrv computes time-domain heart-rate-variability statistics.
//
// All functions are pure. The two-value return convention reports whether
// the input carried enough samples: callers normalize a missing metric to
// zero and record the fact in core.MetricFlags.
package hrv

import (
	"math"

	"hrvmon/internal/core"
)

// MeanHR returns the arithmetic mean of heart-rate values in bpm.
func MeanHR(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// SDNN returns the population standard deviation of inter-beat intervals
// in milliseconds. Requires at least 2 intervals.
func SDNN(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	var sum float64
	for _, v := range rr {
		sum += v
	}
	mean := sum / float64(len(rr))

	var sq float64
	for _, v := range rr {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(rr))), true
}

// RMSSD returns the root mean square of successive inter-beat-interval
// differences in milliseconds. Requires at least 2 intervals.
func RMSSD(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	var sq float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(rr)-1)), true
}

// PNN50 returns the percentage of successive inter-beat-interval
// differences whose absolute value exceeds 50 ms. Requires at least
// 2 intervals.
func PNN50(rr []float64) (float64, bool) {
	if len(rr) < 2 {
		return 0, false
	}
	count := 0
	for i := 1; i < len(rr); i++ {
		if math.Abs(rr[i]-rr[i-1]) > 50 {
			count++
		}
	}
	return 100 * float64(count) / float64(len(rr)-1), true
}

// Compute derives the four window metrics from a set of samples already
// filtered to a window. Metrics that cannot be computed are zero-valued
// and flagged.
func Compute(samples []core.Sample) (core.WindowMetrics, core.MetricFlags) {
	hrValues := make([]float64, 0, len(samples))
	rr := make([]float64, 0, len(samples))
	for _, s := range samples {
		hrValues = append(hrValues, s.HeartRate)
		rr = append(rr, s.RRIntervals...)
	}

	var m core.WindowMetrics
	var flags core.MetricFlags

	var ok bool
	if m.HR, ok = MeanHR(hrValues); !ok {
		flags.HR = true
	}
	if m.SDNN, ok = SDNN(rr); !ok {
		flags.SDNN = true
	}
	if m.RMSSD, ok = RMSSD(rr); !ok {
		flags.RMSSD = true
	}
	if m.PNN50, ok = PNN50(rr); !ok {
		flags.PNN50 = true
	}
	return m, flags
}

// PercentChange returns the percent deviation of each window metric from
// its baseline value. A zero baseline metric contributes zero change so a
// missing reference never divides by zero or fabricates deviation.
func PercentChange(m core.WindowMetrics, base core.BaselineMetrics) core.ChangeVector {
	return core.ChangeVector{
		HR:    percent(m.HR, base.HR),
		SDNN:  percent(m.SDNN, base.SDNN),
		RMSSD: percent(m.RMSSD, base.RMSSD),
		PNN50: percent(m.PNN50, base.PNN50),
	}
}

func percent(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return 100 * (current - base) / base
}
