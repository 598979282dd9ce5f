// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/tmagscope/pkg/capture"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

func TestParseHexBytes(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"0x8C00000C", []byte{0x8C, 0x00, 0x00, 0x0C}},
		{"8c 00 00 0c", []byte{0x8C, 0x00, 0x00, 0x0C}},
		{"8C:00:00:0C", []byte{0x8C, 0x00, 0x00, 0x0C}},
		{"0x0F_00_04_07", []byte{0x0F, 0x00, 0x04, 0x07}},
		{"0x8C0000", []byte{0x8C, 0x00, 0x00}},
		{"F000004", []byte{0x0F, 0x00, 0x00, 0x04}},
		{"-", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got, err := parseHexBytes(tt.in)
		if err != nil {
			t.Errorf("parseHexBytes(%q) error: %v", tt.in, err)
			continue
		}
		assert.Equal(t, tt.want, got, "parseHexBytes(%q)", tt.in)
	}

	if _, err := parseHexBytes("0xZZ"); err == nil {
		t.Error("parseHexBytes(0xZZ) should fail")
	}
}

func TestCapturePath(t *testing.T) {
	assert.Equal(t, "run1.tcap", capturePath("run1"))
	assert.Equal(t, "run1.tcap", capturePath("run1.tcap"))
	assert.Equal(t, "dir/run.bin", capturePath("dir/run.bin"))
}

func TestIsEventLine(t *testing.T) {
	assert.True(t, isEventLine(`"SPI","result",0.000100,0.000001,0x8C,0xC8`))
	assert.True(t, isEventLine("SPI,enable,0.0,0.0,,"))
	assert.True(t, isEventLine("SPI, Disable, 0.5, 0,,"))
	assert.False(t, isEventLine("name,type,start_time,duration,mosi,miso"))
	assert.False(t, isEventLine("booting bridge v1.2"))
	assert.False(t, isEventLine(""))
}

func TestRegisterAddresses(t *testing.T) {
	addrs, err := registerAddresses([]string{"temp_result", "SYS_STATUS", "0x09"})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x0C, 0x0E, 0x09}, addrs)

	_, err = registerAddresses([]string{"NOT_A_REGISTER"})
	assert.ErrorIs(t, err, tmag5170.ErrUnknownRegister)
}

// scriptedSource replays a fixed list of results
type scriptedSource struct {
	events []capture.Event
	errs   []error
}

func (s *scriptedSource) Next() (capture.Event, error) {
	if len(s.errs) == 0 {
		return capture.Event{}, io.EOF
	}
	ev, err := s.events[0], s.errs[0]
	s.events, s.errs = s.events[1:], s.errs[1:]
	return ev, err
}

func TestBusSource_SkipsBadRecordsAndEndsOnClose(t *testing.T) {
	ev := capture.Event{Type: tmag5170.EventEnable, Time: time.Unix(0, 0)}
	src := &scriptedSource{
		events: []capture.Event{{}, ev, {}},
		errs: []error{
			fmt.Errorf("%w: line 3: mosi %q", capture.ErrBadRecord, "0xZZ"),
			nil,
			ErrConnectionClosed,
		},
	}
	bus := &busSource{src: src}

	got, err := bus.Next()
	require.NoError(t, err)
	assert.Equal(t, tmag5170.EventEnable, got.Type)
	assert.Equal(t, 1, bus.skipped)

	_, err = bus.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBusSource_PassesOtherErrors(t *testing.T) {
	boom := errors.New("device unplugged")
	bus := &busSource{src: &scriptedSource{events: []capture.Event{{}}, errs: []error{boom}}}

	_, err := bus.Next()
	assert.ErrorIs(t, err, boom)
}

func TestModelTracksTransactions(t *testing.T) {
	cfg := tmag5170.DefaultConfig()
	m := initialModel("File: test.csv", cfg, 10, false)

	d := tmag5170.NewDecoder(cfg).Decode(tmag5170.Transaction{
		Start: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		MOSI:  tmag5170.Uint32ToBytes(0x8C00000C),
		MISO:  tmag5170.Uint32ToBytes(0xC8447208),
	})
	verrs := tmag5170.ValidateTransaction(d, cfg)
	require.Len(t, verrs, 2, "PREV_CRC and CFG_RESET are flagged")

	updated, _ := m.Update(transactionMsg{tx: d, validationErrors: verrs})
	m = updated.(model)

	assert.True(t, m.started)
	assert.Equal(t, uint64(1), m.stats.TotalTransactions)
	assert.Equal(t, uint64(2), m.stats.DeviceFlags)
	assert.Len(t, m.errorLog, 3)

	reg, ok := m.registers[0x0C]
	require.True(t, ok)
	assert.Equal(t, "TEMP_RESULT", reg.name)
	assert.Equal(t, uint16(0x4472), reg.value)
	assert.Len(t, m.registerView.Rows(), 1)

	updated, _ = m.Update(sourceDoneMsg{})
	m = updated.(model)
	assert.True(t, m.finished)
	assert.Contains(t, m.View(), "TMAGSCOPE - ERROR DETECTION")
}
