// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(us int) time.Time {
	return t0.Add(time.Duration(us) * time.Microsecond)
}

// feedWords emits one result event per byte of the two words
func feedWords(a *Assembler, start int, mosi, miso uint32) []*DecodedTransaction {
	var out []*DecodedTransaction
	mb := Uint32ToBytes(mosi)
	sb := Uint32ToBytes(miso)
	for i := 0; i < FrameByteSize; i++ {
		if d := a.Result(at(start+i), mb[i:i+1], sb[i:i+1]); d != nil {
			out = append(out, d)
		}
	}
	return out
}

func TestAssembler_EnableResultDisable(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)

	assert.Nil(t, a.Enable(at(0)))
	assert.Empty(t, feedWords(a, 1, 0x8C00000C, 0x0044720F))

	m, s := a.Pending()
	assert.Equal(t, 4, m)
	assert.Equal(t, 4, s)

	d := a.Disable(at(10))
	require.NotNil(t, d)
	assert.Equal(t, uint64(0), d.Index)
	assert.Equal(t, at(0), d.Start)
	assert.Equal(t, at(10), d.End)
	assert.Equal(t, "TEMP_RESULT", d.Register.Name)
	assert.Equal(t, uint16(17522), d.Register.Value)
	assert.True(t, d.CRCOK())
	assert.Equal(t, uint64(1), a.Count())

	m, s = a.Pending()
	assert.Zero(t, m)
	assert.Zero(t, s)
}

func TestAssembler_DisableWithoutBytes(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	assert.Nil(t, a.Disable(at(0)))
	assert.Equal(t, uint64(0), a.Count())
}

func TestAssembler_EnableThenDisableEmitsLengthError(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	a.Enable(at(0))
	d := a.Disable(at(1))
	require.NotNil(t, d)
	assert.True(t, d.LengthError())
	assert.Equal(t, 0, d.MOSI.ByteCount())
}

func TestAssembler_ResultWithoutEnable(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	assert.Empty(t, feedWords(a, 5, 0x8F000008, 0xC0400002))

	d := a.Disable(at(20))
	require.NotNil(t, d)
	assert.Equal(t, at(5), d.Start, "first result opens the window")
	assert.Equal(t, "TEST_CONFIG", d.Register.Name)
}

func TestAssembler_LeftoverOnEnable(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	a.Enable(at(0))
	a.Result(at(1), []byte{0x8F, 0x00}, []byte{0x00, 0x00})

	leftover := a.Enable(at(5))
	require.NotNil(t, leftover)
	assert.True(t, leftover.LengthError())
	assert.Equal(t, 2, leftover.MOSI.ByteCount())
	assert.Equal(t, uint64(0), leftover.Index)

	feedWords(a, 6, 0x8F000008, 0xC0400002)
	d := a.Disable(at(12))
	require.NotNil(t, d)
	assert.Equal(t, uint64(1), d.Index)
	assert.False(t, d.LengthError())
	assert.Equal(t, at(5), d.Start)
}

func TestAssembler_TooManyBytes(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	a.Enable(at(0))
	feedWords(a, 1, 0x8F000008, 0xC0400002)
	a.Result(at(5), []byte{0xFF}, []byte{0xFF})

	d := a.Disable(at(6))
	require.NotNil(t, d)
	assert.True(t, d.LengthError())
	assert.Equal(t, 5, d.MOSI.ByteCount())
	assert.Equal(t, LengthErrorToken, d.MISO.String())
}

func TestAssembler_SplitFrames(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), true)
	a.Enable(at(0))

	assert.Empty(t, feedWords(a, 1, 0x8F000008, 0xC0400002))
	out := feedWords(a, 5, 0x8C00000C, 0x0044720F)
	require.Len(t, out, 1, "second frame's first byte closes the first frame")
	assert.Equal(t, "TEST_CONFIG", out[0].Register.Name)
	assert.Equal(t, at(5), out[0].End)

	d := a.Disable(at(10))
	require.NotNil(t, d)
	assert.Equal(t, "TEMP_RESULT", d.Register.Name)
	assert.Equal(t, at(5), d.Start)
	assert.Equal(t, uint64(2), a.Count())
}

func TestAssembler_SplitFramesDisabledMergesFrames(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	a.Enable(at(0))
	assert.Empty(t, feedWords(a, 1, 0x8F000008, 0xC0400002))
	assert.Empty(t, feedWords(a, 5, 0x8C00000C, 0x0044720F))

	d := a.Disable(at(10))
	require.NotNil(t, d)
	assert.True(t, d.LengthError())
	assert.Equal(t, 8, d.MOSI.ByteCount())
}

func TestAssembler_Flush(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	assert.Nil(t, a.Flush(at(0)))

	a.Enable(at(0))
	feedWords(a, 1, 0x8F000008, 0xC0400002)
	d := a.Flush(at(9))
	require.NotNil(t, d)
	assert.Equal(t, "TEST_CONFIG", d.Register.Name)
	assert.Nil(t, a.Flush(at(10)))
}

func TestAssembler_Feed(t *testing.T) {
	a := NewAssembler(NewDecoder(DefaultConfig()), false)
	mb := Uint32ToBytes(0x8F000008)
	sb := Uint32ToBytes(0xC0400002)

	events := []BusEvent{{Type: EventEnable, Time: at(0)}}
	for i := range mb {
		events = append(events, BusEvent{Type: EventResult, Time: at(i + 1), MOSI: mb[i : i+1], MISO: sb[i : i+1]})
	}
	events = append(events, BusEvent{Type: EventDisable, Time: at(6)})

	var out []*DecodedTransaction
	for _, ev := range events {
		if d := a.Feed(ev); d != nil {
			out = append(out, d)
		}
	}
	require.Len(t, out, 1)
	assert.Equal(t, DirectionRead, out[0].Direction)
	require.NotNil(t, out[0].Status)
	assert.Equal(t, uint8(1), out[0].Status.CfgReset)
}

func TestParseEventType(t *testing.T) {
	for _, e := range []EventType{EventEnable, EventResult, EventDisable} {
		got, err := ParseEventType(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := ParseEventType("error")
	assert.Error(t, err)
}
