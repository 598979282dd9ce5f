// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// A TEMP_RESULT read as exported by Logic 2
const tempReadCSV = `name,type,start_time,duration,mosi,miso
"SPI","enable",0.000001000,0,,
"SPI","result",0.000002000,0.0000008,0x8C,0x00
"SPI","result",0.000003000,0.0000008,0x00,0x44
"SPI","result",0.000004000,0.0000008,0x00,0x72
"SPI","result",0.000005000,0.0000008,0x0C,0x0F
"SPI","disable",0.000006000,0,,
`

func readAll(t *testing.T, src Source) []Event {
	t.Helper()
	var events []Event
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestCSVReader_Logic2Export(t *testing.T) {
	events := readAll(t, NewCSVReader(strings.NewReader(tempReadCSV), base))
	require.Len(t, events, 6)

	assert.Equal(t, tmag5170.EventEnable, events[0].Type)
	assert.Equal(t, base.Add(time.Microsecond), events[0].Time)
	assert.Nil(t, events[0].MOSI)

	assert.Equal(t, tmag5170.EventResult, events[1].Type)
	assert.Equal(t, []byte{0x8C}, events[1].MOSI)
	assert.Equal(t, []byte{0x00}, events[1].MISO)
	assert.Equal(t, base.Add(2*time.Microsecond), events[1].Time)

	assert.Equal(t, tmag5170.EventDisable, events[5].Type)
}

func TestCSVReader_NoHeaderDecimalCells(t *testing.T) {
	input := "SPI,enable,0,0,,\nSPI,result,0.5,0,143,192\nSPI,disable,1,0,,\n"
	events := readAll(t, NewCSVReader(strings.NewReader(input), base))
	require.Len(t, events, 3)
	assert.Equal(t, []byte{0x8F}, events[1].MOSI)
	assert.Equal(t, []byte{0xC0}, events[1].MISO)
	assert.Equal(t, base.Add(500*time.Millisecond), events[1].Time)
}

func TestCSVReader_ReorderedColumns(t *testing.T) {
	input := "type,miso,mosi,start_time\nresult,0x01,0x02,0\n"
	events := readAll(t, NewCSVReader(strings.NewReader(input), base))
	require.Len(t, events, 1)
	assert.Equal(t, []byte{0x02}, events[0].MOSI)
	assert.Equal(t, []byte{0x01}, events[0].MISO)
}

func TestCSVReader_SkipsUnknownTypes(t *testing.T) {
	input := "SPI,error,0,0,,\nSPI,enable,0,0,,\n"
	r := NewCSVReader(strings.NewReader(input), base)
	events := readAll(t, r)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), r.Skipped())
}

func TestCSVReader_BadCell(t *testing.T) {
	r := NewCSVReader(strings.NewReader("SPI,result,0,0,0x1FF,0x00\n"), base)
	_, err := r.Next()
	assert.ErrorIs(t, err, ErrBadRecord)

	r = NewCSVReader(strings.NewReader("SPI,result,soon,0,0x00,0x00\n"), base)
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	events := []Event{
		{Type: tmag5170.EventEnable, Time: base},
		{Type: tmag5170.EventResult, Time: base.Add(time.Microsecond), MOSI: []byte{0x8F}, MISO: []byte{0xC0}},
		{Type: tmag5170.EventDisable, Time: base.Add(2 * time.Microsecond)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, base, events))

	got := readAll(t, NewCSVReader(&buf, base))
	require.Len(t, got, len(events))
	for i := range events {
		assert.Equal(t, events[i].Type, got[i].Type)
		assert.True(t, events[i].Time.Equal(got[i].Time), "event %d time", i)
		assert.Equal(t, events[i].MOSI, got[i].MOSI)
	}
}

func TestParseByte(t *testing.T) {
	for in, want := range map[string]byte{"0x8F": 0x8F, "0X0c": 0x0C, "255": 255, " 7 ": 7} {
		got, err := ParseByte(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseByte("256")
	assert.Error(t, err)
}
