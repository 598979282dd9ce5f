// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package capture reads and writes SPI analyzer event streams.
//
// Two formats are supported: the CSV table exported by the Saleae Logic 2
// SPI analyzer (also used for line streams arriving over serial or WebSocket
// bridges) and a compact CBOR capture file (.tcap) written by the record
// command. Both yield Events that drive a tmag5170.Assembler.
package capture

import (
	"time"

	"github.com/google/uuid"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

// Event is one chip-select or byte-exchange event on the bus.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Time the event was observed.
	Time time.Time `cbor:"1,keyasint"`

	// Type is enable, result or disable.
	Type tmag5170.EventType `cbor:"2,keyasint"`

	// MOSI and MISO hold the bytes of a result event.
	MOSI []byte `cbor:"3,keyasint,omitempty"`
	MISO []byte `cbor:"4,keyasint,omitempty"`

	// SessionID identifies the recording session (UUID).
	SessionID string `cbor:"5,keyasint,omitempty"`
}

// BusEvent converts the event for the assembler
func (e Event) BusEvent() tmag5170.BusEvent {
	return tmag5170.BusEvent{
		Type: e.Type,
		Time: e.Time,
		MOSI: e.MOSI,
		MISO: e.MISO,
	}
}

// NewSessionID returns a fresh random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// Source yields events until io.EOF
type Source interface {
	Next() (Event, error)
}
