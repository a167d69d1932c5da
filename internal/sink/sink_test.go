package sink

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hrvmon/internal/core"
)

func testRecord(level core.Level) core.ResultRecord {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return core.ResultRecord{
		SessionID:   "test-session",
		WindowStart: now,
		WindowEnd:   now.Add(30 * time.Second),
		Stress:      core.Verdict{Score: 0.5, Level: level},
	}
}

func TestFileSink_ResetsFileOnCreation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch_data.json")
	if err := os.WriteFile(path, []byte(`{"entries":[{"sequenceNumber":9}],"currentSequence":9}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileSink(path); err != nil {
		t.Fatalf("new file sink: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		t.Fatalf("parse hand-off file: %v", err)
	}
	if len(fd.Entries) != 0 || fd.CurrentSequence != 0 {
		t.Errorf("expected empty structure after reset, got %+v", fd)
	}
}

func TestFileSink_SequenceIncrements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch_data.json")
	s, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Emit(testRecord(core.Mild)); err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		t.Fatal(err)
	}
	if fd.CurrentSequence != 3 {
		t.Errorf("expected currentSequence 3, got %d", fd.CurrentSequence)
	}
	if len(fd.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(fd.Entries))
	}
	for i, e := range fd.Entries {
		if e.SequenceNumber != i+1 {
			t.Errorf("entry %d: expected sequence %d, got %d", i, i+1, e.SequenceNumber)
		}
	}
	if fd.Entries[0].Record.Stress.Level != core.Mild {
		t.Errorf("expected Mild level round-tripped, got %v", fd.Entries[0].Record.Stress.Level)
	}
}

func TestFileSink_UnwritablePath(t *testing.T) {
	if _, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "watch_data.json")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

type failingSink struct{ err error }

func (f failingSink) Emit(core.ResultRecord) error { return f.err }

func TestFanout_DeliversToAllDespiteFailure(t *testing.T) {
	boom := errors.New("boom")
	mem := NewMemory()
	f := Fanout{failingSink{err: boom}, mem}

	err := f.Emit(testRecord(core.High))
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error containing boom, got %v", err)
	}
	if len(mem.Records()) != 1 {
		t.Errorf("later sinks must still receive the record, got %d", len(mem.Records()))
	}
}

func TestMemory_RecordsCopy(t *testing.T) {
	m := NewMemory()
	m.Emit(testRecord(core.NotStressed))

	first := m.Records()
	m.Emit(testRecord(core.High))

	if len(first) != 1 {
		t.Errorf("earlier snapshot must not grow, got %d", len(first))
	}
	if len(m.Records()) != 2 {
		t.Errorf("expected 2 records, got %d", len(m.Records()))
	}
}
