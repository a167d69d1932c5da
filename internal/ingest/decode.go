// Package ingest turns transport notifications into beat samples.
package ingest

import (
	"encoding/binary"
	"fmt"
)

// Heart Rate Measurement (0x2A37) flag bits.
const (
	flagHRUint16    = 0x01
	flagRRIntervals = 0x10
)

// Measurement is a decoded Heart Rate Measurement characteristic payload.
type Measurement struct {
	HeartRate   float64
	RRIntervals []float64 // ms
}

// DecodeHeartRate parses a GATT Heart Rate Measurement payload: one flags
// byte, a uint8 or uint16 little-endian heart rate, then any number of
// trailing uint16 RR intervals. RR values are read as milliseconds, the
// band's own convention.
func DecodeHeartRate(data []byte) (Measurement, error) {
	if len(data) < 2 {
		return Measurement{}, fmt.Errorf("heart rate payload too short: %d bytes", len(data))
	}

	flags := data[0]
	index := 1

	var hr float64
	if flags&flagHRUint16 != 0 {
		if len(data) < index+2 {
			return Measurement{}, fmt.Errorf("truncated uint16 heart rate field")
		}
		hr = float64(binary.LittleEndian.Uint16(data[index:]))
		index += 2
	} else {
		hr = float64(data[index])
		index++
	}

	var rr []float64
	if flags&flagRRIntervals != 0 {
		for index+1 < len(data) {
			rr = append(rr, float64(binary.LittleEndian.Uint16(data[index:])))
			index += 2
		}
	}

	return Measurement{HeartRate: hr, RRIntervals: rr}, nil
}

// EncodeHeartRate builds a Heart Rate Measurement payload from a reading.
// The simulator uses it to speak the same wire format the band does.
func EncodeHeartRate(hr float64, rrMS []float64) []byte {
	var flags byte
	if len(rrMS) > 0 {
		flags |= flagRRIntervals
	}

	wide := hr > 0xFF
	if wide {
		flags |= flagHRUint16
	}

	buf := []byte{flags}
	if wide {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(hr))
	} else {
		buf = append(buf, byte(hr))
	}
	for _, rr := range rrMS {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(rr))
	}
	return buf
}
