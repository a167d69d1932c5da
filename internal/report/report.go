// Package report aggregates a session's emitted records into a summary.
package report

import (
	"time"

	"hrvmon/internal/core"
)

// Report contains aggregated session results.
type Report struct {
	SessionID       string        `json:"sessionId"`
	Duration        time.Duration `json:"duration"`
	Windows         int           `json:"windows"`
	NotStressed     int           `json:"notStressed"`
	Mild            int           `json:"mild"`
	High            int           `json:"high"`
	FlaggedWindows  int           `json:"flaggedWindows"`
	DistractedCount int           `json:"distractedWindows"`
	Episodes        int           `json:"distractionEpisodes"`
	PeakStreak      float64       `json:"peakStreak"`
	AvgScore        float64       `json:"avgScore"`
	MaxScore        float64       `json:"maxScore"`
	Baseline        *core.BaselineMetrics `json:"baseline,omitempty"`
}

// Compute aggregates records. Pure function, no side effects. The
// baseline record is excluded from window counts; a distraction episode
// is a maximal run of consecutive distracted windows.
func Compute(records []core.ResultRecord) *Report {
	r := &Report{}
	if len(records) == 0 {
		return r
	}
	r.SessionID = records[0].SessionID

	var first, last time.Time
	var totalScore float64
	inEpisode := false

	for _, rec := range records {
		if rec.IsBaseline {
			b := *rec.Baseline
			r.Baseline = &b
			continue
		}

		if first.IsZero() {
			first = rec.WindowStart
		}
		last = rec.WindowEnd

		r.Windows++
		switch rec.Stress.Level {
		case core.High:
			r.High++
		case core.Mild:
			r.Mild++
		default:
			r.NotStressed++
		}
		if rec.Missing.Any() {
			r.FlaggedWindows++
		}

		totalScore += rec.Stress.Score
		if rec.Stress.Score > r.MaxScore {
			r.MaxScore = rec.Stress.Score
		}
		if rec.Streak > r.PeakStreak {
			r.PeakStreak = rec.Streak
		}

		if rec.Distraction {
			r.DistractedCount++
			if !inEpisode {
				r.Episodes++
				inEpisode = true
			}
		} else {
			inEpisode = false
		}
	}

	if r.Windows > 0 {
		r.AvgScore = totalScore / float64(r.Windows)
		r.Duration = last.Sub(first)
	}
	return r
}
