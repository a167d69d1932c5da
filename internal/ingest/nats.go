package ingest

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"hrvmon/internal/core"
)

// Connect dials the NATS server with the client options this system uses.
// onDisconnect fires when the connection drops, before any reconnect
// attempt; the session treats that as a transport disconnect.
func Connect(url string, onDisconnect func()) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("hrvmon"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, _ error) {
			if onDisconnect != nil {
				onDisconnect()
			}
		}),
	)
}

// Subscribe delivers each notification on subject to the handler as a
// Sample stamped with arrival time. Undecodable payloads are logged and
// dropped; one bad frame must not stop the feed.
func Subscribe(nc *nats.Conn, subject string, h core.SampleHandler, clock core.Clock, logger *log.Logger) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		m, err := DecodeHeartRate(msg.Data)
		if err != nil {
			if logger != nil {
				logger.Printf("dropping bad heart rate frame: %v", err)
			}
			return
		}
		h.OnSample(core.Sample{
			Timestamp:   clock.Now(),
			HeartRate:   m.HeartRate,
			RRIntervals: m.RRIntervals,
		})
	})
}
