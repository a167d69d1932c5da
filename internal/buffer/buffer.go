// Package buffer stores raw beat samples for time-windowed queries.
package buffer

import (
	"sync"
	"time"

	"hrvmon/internal/core"
)

// SampleBuffer is an append-only store of beat samples that answers
// "give me everything within the last N seconds". It supports one
// concurrent writer (the ingestion path) and any number of readers
// (window closers).
type SampleBuffer struct {
	mu        sync.RWMutex
	samples   []core.Sample
	retention time.Duration
}

// NewSampleBuffer creates an empty buffer. A retention of 0 keeps every
// sample for the session; a positive retention trims samples older than
// the newest sample's timestamp minus retention, which is safe as long as
// retention covers the largest window ever queried.
func NewSampleBuffer(retention time.Duration) *SampleBuffer {
	return &SampleBuffer{retention: retention}
}

// Append adds one sample. Samples are expected in arrival order.
func (b *SampleBuffer) Append(s core.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, s)
	if b.retention <= 0 {
		return
	}
	cutoff := s.Timestamp.Add(-b.retention)
	i := 0
	for i < len(b.samples) && b.samples[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		b.samples = append(b.samples[:0], b.samples[i:]...)
	}
}

// Since returns the samples with Timestamp >= now-window, in arrival order.
// The returned slice is a copy and safe to hold across further appends.
func (b *SampleBuffer) Since(now time.Time, window time.Duration) []core.Sample {
	cutoff := now.Add(-window)

	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]core.Sample, 0, len(b.samples))
	for _, s := range b.samples {
		if !s.Timestamp.Before(cutoff) {
			result = append(result, s)
		}
	}
	return result
}

// Len returns the number of retained samples.
func (b *SampleBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}
