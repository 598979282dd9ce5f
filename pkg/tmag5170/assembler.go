// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"fmt"
	"time"
)

// EventType is the kind of low-level SPI analyzer event
type EventType uint8

const (
	EventEnable  EventType = iota // chip select asserted
	EventResult                   // one byte exchanged on each line
	EventDisable                  // chip select released
)

// String returns the analyzer name of the event type
func (e EventType) String() string {
	switch e {
	case EventEnable:
		return "enable"
	case EventResult:
		return "result"
	case EventDisable:
		return "disable"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(e))
	}
}

// ParseEventType maps "enable", "result" and "disable" to their event type
func ParseEventType(s string) (EventType, error) {
	switch s {
	case "enable":
		return EventEnable, nil
	case "result":
		return EventResult, nil
	case "disable":
		return EventDisable, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// BusEvent is one event delivered by the upstream SPI analyzer
type BusEvent struct {
	Type EventType
	Time time.Time
	MOSI []byte
	MISO []byte
}

// Assembler states
const (
	stateWaitEnable = iota
	stateAccumulating
)

// Assembler collects bytes between chip-select events into frame pairs and
// hands them to a Decoder
type Assembler struct {
	decoder     *Decoder
	splitFrames bool

	state int
	start time.Time
	mosi  []byte
	miso  []byte
	count uint64
}

// NewAssembler creates an assembler. With splitFrames set, a transaction is
// finalized as soon as a side has collected four bytes and the next result
// arrives, so back-to-back frames without chip-select toggling still decode.
func NewAssembler(decoder *Decoder, splitFrames bool) *Assembler {
	return &Assembler{
		decoder:     decoder,
		splitFrames: splitFrames,
		state:       stateWaitEnable,
		mosi:        make([]byte, 0, FrameByteSize*2),
		miso:        make([]byte, 0, FrameByteSize*2),
	}
}

// Reset discards buffered bytes and waits for the next enable
func (a *Assembler) Reset() {
	a.state = stateWaitEnable
	a.start = time.Time{}
	a.mosi = a.mosi[:0]
	a.miso = a.miso[:0]
}

// Count returns the number of transactions emitted so far
func (a *Assembler) Count() uint64 {
	return a.count
}

// Pending returns the number of bytes buffered on MOSI and MISO
func (a *Assembler) Pending() (mosi, miso int) {
	return len(a.mosi), len(a.miso)
}

// Feed processes one analyzer event, returning a transaction when one completes
func (a *Assembler) Feed(ev BusEvent) *DecodedTransaction {
	switch ev.Type {
	case EventEnable:
		return a.Enable(ev.Time)
	case EventResult:
		return a.Result(ev.Time, ev.MOSI, ev.MISO)
	case EventDisable:
		return a.Disable(ev.Time)
	}
	return nil
}

// Enable opens a transaction. Bytes left over from a window whose disable was
// never seen are emitted first as their own transaction.
func (a *Assembler) Enable(t time.Time) *DecodedTransaction {
	var leftover *DecodedTransaction
	if a.hasBytes() {
		leftover = a.finalize(t)
	}
	a.state = stateAccumulating
	a.start = t
	return leftover
}

// Result appends the bytes of one exchange
func (a *Assembler) Result(t time.Time, mosi, miso []byte) *DecodedTransaction {
	var done *DecodedTransaction

	if a.state == stateWaitEnable {
		a.state = stateAccumulating
		a.start = t
	} else if a.splitFrames && (len(a.mosi) == FrameByteSize || len(a.miso) == FrameByteSize) {
		done = a.finalize(t)
		a.state = stateAccumulating
		a.start = t
	}

	a.mosi = append(a.mosi, mosi...)
	a.miso = append(a.miso, miso...)
	return done
}

// Disable closes the transaction and decodes it. A disable with nothing
// buffered is ignored.
func (a *Assembler) Disable(t time.Time) *DecodedTransaction {
	if a.state == stateWaitEnable && !a.hasBytes() {
		return nil
	}
	return a.finalize(t)
}

// Flush decodes whatever is buffered, for use at end of input
func (a *Assembler) Flush(t time.Time) *DecodedTransaction {
	if !a.hasBytes() {
		a.Reset()
		return nil
	}
	return a.finalize(t)
}

func (a *Assembler) hasBytes() bool {
	return len(a.mosi) > 0 || len(a.miso) > 0
}

func (a *Assembler) finalize(end time.Time) *DecodedTransaction {
	tx := Transaction{
		Start: a.start,
		End:   end,
		MOSI:  append([]byte(nil), a.mosi...),
		MISO:  append([]byte(nil), a.miso...),
	}
	decoded := a.decoder.Decode(tx)
	decoded.Index = a.count
	a.count++
	a.Reset()
	return decoded
}
