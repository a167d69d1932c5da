package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FormatText writes the report in human-readable form.
func FormatText(w io.Writer, r *Report) {
	if r.Windows == 0 && r.Baseline == nil {
		fmt.Fprintln(w, "No windows recorded")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "hrvmon - Session Summary")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w, "")
	if r.Baseline != nil {
		b := r.Baseline
		fmt.Fprintf(w, "Baseline:       hr=%.1f sdnn=%.1f rmssd=%.1f pnn50=%.1f%%\n",
			b.HR, b.SDNN, b.RMSSD, b.PNN50)
	}
	fmt.Fprintf(w, "Monitored:      %v\n", r.Duration.Round(time.Second))
	fmt.Fprintf(w, "Windows:        %d\n", r.Windows)
	if r.Windows > 0 {
		fmt.Fprintf(w, "Stress levels:  high=%d mild=%d calm=%d\n", r.High, r.Mild, r.NotStressed)
		fmt.Fprintf(w, "Scores:         avg=%.2f max=%.2f\n", r.AvgScore, r.MaxScore)
		fmt.Fprintf(w, "Peak streak:    %.1f\n", r.PeakStreak)
		fmt.Fprintf(w, "Distraction:    %d windows in %d episodes\n", r.DistractedCount, r.Episodes)
		if r.FlaggedWindows > 0 {
			fmt.Fprintf(w, "Flagged:        %d windows with missing metrics\n", r.FlaggedWindows)
		}
	}
}

// FormatJSON writes the report in JSON form.
func FormatJSON(w io.Writer, r *Report) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(r) // stdout errors are unrecoverable
}
