package sink

import (
	"errors"
	"sync"

	"hrvmon/internal/core"
)

// Fanout delivers each record to every sink. All sinks are attempted even
// when one fails; the errors come back joined.
type Fanout []core.Sink

// Emit sends the record to every sink in order.
func (f Fanout) Emit(rec core.ResultRecord) error {
	var errs []error
	for _, s := range f {
		if err := s.Emit(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Memory retains every emitted record, for the end-of-session report and
// for tests.
type Memory struct {
	mu      sync.Mutex
	records []core.ResultRecord
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit stores the record.
func (m *Memory) Emit(rec core.ResultRecord) error {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

// Records returns a copy of everything emitted so far.
func (m *Memory) Records() []core.ResultRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]core.ResultRecord, len(m.records))
	copy(result, m.records)
	return result
}
