package buffer

import (
	"sync"
	"testing"
	"time"

	"hrvmon/internal/core"
)

func sampleAt(t time.Time, hr float64) core.Sample {
	return core.Sample{Timestamp: t, HeartRate: hr}
}

func TestSince_ReturnsWindowSubsetInOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(0)
	for i := 0; i < 10; i++ {
		b.Append(sampleAt(start.Add(time.Duration(i)*time.Second), 60+float64(i)))
	}

	now := start.Add(9 * time.Second)
	got := b.Since(now, 3*time.Second)

	if len(got) != 4 {
		t.Fatalf("expected 4 samples within 3s window, got %d", len(got))
	}
	for i, s := range got {
		expected := 66 + float64(i)
		if s.HeartRate != expected {
			t.Errorf("sample %d: expected HR %v, got %v", i, expected, s.HeartRate)
		}
	}
}

func TestSince_BoundaryIsInclusive(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(0)
	b.Append(sampleAt(start, 60))
	b.Append(sampleAt(start.Add(5*time.Second), 61))

	// Sample exactly at now-window must be included.
	got := b.Since(start.Add(5*time.Second), 5*time.Second)
	if len(got) != 2 {
		t.Errorf("expected 2 samples (boundary inclusive), got %d", len(got))
	}
}

func TestSince_Idempotent(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(0)
	for i := 0; i < 5; i++ {
		b.Append(sampleAt(start.Add(time.Duration(i)*time.Second), 70))
	}

	now := start.Add(4 * time.Second)
	first := b.Since(now, 2*time.Second)
	second := b.Since(now, 2*time.Second)

	if len(first) != len(second) {
		t.Fatalf("repeated query changed result size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Timestamp.Equal(second[i].Timestamp) {
			t.Errorf("sample %d differs between identical queries", i)
		}
	}
}

func TestSince_EmptyBuffer(t *testing.T) {
	b := NewSampleBuffer(0)
	got := b.Since(time.Now(), time.Minute)
	if len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
}

func TestAppend_RetentionTrimsOldSamples(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(10 * time.Second)
	for i := 0; i < 30; i++ {
		b.Append(sampleAt(start.Add(time.Duration(i)*time.Second), 70))
	}

	if b.Len() > 11 {
		t.Errorf("expected at most 11 retained samples, got %d", b.Len())
	}

	// Everything inside the retention window must still be there.
	got := b.Since(start.Add(29*time.Second), 10*time.Second)
	if len(got) != 11 {
		t.Errorf("expected 11 samples within retention window, got %d", len(got))
	}
}

func TestAppend_ZeroRetentionKeepsAll(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(0)
	for i := 0; i < 100; i++ {
		b.Append(sampleAt(start.Add(time.Duration(i)*time.Second), 70))
	}
	if b.Len() != 100 {
		t.Errorf("expected all 100 samples retained, got %d", b.Len())
	}
}

func TestConcurrentWriterAndReaders(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	b := NewSampleBuffer(0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Append(sampleAt(start.Add(time.Duration(i)*time.Millisecond), 70))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got := b.Since(start.Add(time.Second), 500*time.Millisecond)
				for j := 1; j < len(got); j++ {
					if got[j].Timestamp.Before(got[j-1].Timestamp) {
						t.Error("samples out of arrival order during concurrent read")
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}
