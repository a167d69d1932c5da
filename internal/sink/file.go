// Package sink delivers result records to their consumers.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"hrvmon/internal/core"
)

type fileEntry struct {
	SequenceNumber int               `json:"sequenceNumber"`
	Record         core.ResultRecord `json:"record"`
}

type fileData struct {
	Entries         []fileEntry `json:"entries"`
	CurrentSequence int         `json:"currentSequence"`
}

// FileSink writes every record into a single JSON hand-off file holding
// all entries with monotonically increasing sequence numbers. Downstream
// processes poll this file, so it is rewritten whole on each emit and
// reset to an empty structure when a session starts.
type FileSink struct {
	mu   sync.Mutex
	path string
	data fileData
}

// NewFileSink creates the sink and resets the hand-off file.
func NewFileSink(path string) (*FileSink, error) {
	s := &FileSink{path: path, data: fileData{Entries: []fileEntry{}}}
	if err := s.write(); err != nil {
		return nil, err
	}
	return s, nil
}

// Emit appends the record with the next sequence number and rewrites the
// file.
func (s *FileSink) Emit(rec core.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.CurrentSequence++
	s.data.Entries = append(s.data.Entries, fileEntry{
		SequenceNumber: s.data.CurrentSequence,
		Record:         rec,
	})
	if err := s.write(); err != nil {
		// Roll back so the sequence stays in step with the file.
		s.data.Entries = s.data.Entries[:len(s.data.Entries)-1]
		s.data.CurrentSequence--
		return err
	}
	return nil
}

func (s *FileSink) write() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	return nil
}
