package sink

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"hrvmon/internal/core"
)

// NATSSink streams each record as JSON to a subject, the live counterpart
// of the hand-off file. The connection is owned by the caller.
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSink creates a sink publishing to the given subject.
func NewNATSSink(nc *nats.Conn, subject string) *NATSSink {
	return &NATSSink{nc: nc, subject: subject}
}

// Emit publishes one record.
func (s *NATSSink) Emit(rec core.ResultRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding result record: %w", err)
	}
	if err := s.nc.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publishing result record: %w", err)
	}
	return nil
}

// Flush waits for buffered publishes to reach the server.
func (s *NATSSink) Flush() error {
	return s.nc.Flush()
}
