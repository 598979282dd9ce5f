// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"bytes"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		expected uint32
	}{
		{"read TEST_CONFIG", Command{Read: true, Address: RegTestConfig}, 0x8F000008},
		{"write TEST_CONFIG CRC_DIS", Command{Address: RegTestConfig, Data: 0x0004}, 0x0F000407},
		{"read TEMP_RESULT", Command{Read: true, Address: RegTempResult}, 0x8C00000C},
		{"write DEVICE_CONFIG", Command{Address: RegDeviceConfig, Data: 0x2020}, 0x0020200A},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeFrame(tt.cmd); got != tt.expected {
				t.Errorf("EncodeFrame = 0x%08X, expected 0x%08X", got, tt.expected)
			}
		})
	}
}

func TestEncodeFrame_AddressMasked(t *testing.T) {
	// only seven address bits fit; bit 7 must not leak into the R/W bit
	frame := EncodeFrame(Command{Address: 0x8C})
	if GetBit(frame, ReadWriteBitPosition) != 0 {
		t.Errorf("address bit 7 set the read bit: 0x%08X", frame)
	}
	if FrameFromWord(frame).Address() != 0x0C {
		t.Errorf("expected address 0x0C, got 0x%02X", FrameFromWord(frame).Address())
	}
}

func TestEncodeReadWriteCommand(t *testing.T) {
	if got := EncodeReadCommand(RegTestConfig, 0); !bytes.Equal(got, []byte{0x8F, 0x00, 0x00, 0x08}) {
		t.Errorf("read command bytes = % X", got)
	}
	if got := EncodeWriteCommand(RegTestConfig, 0x0004, 0); !bytes.Equal(got, []byte{0x0F, 0x00, 0x04, 0x07}) {
		t.Errorf("write command bytes = % X", got)
	}
}

func TestEncodeResponse(t *testing.T) {
	if got := EncodeResponse(0x00, 17522, 0); got != 0x0044720F {
		t.Errorf("EncodeResponse = 0x%08X, expected 0x0044720F", got)
	}
	if got := EncodeResponse(0xC8, 0, 0); got != 0xC800000E {
		t.Errorf("EncodeResponse = 0x%08X, expected 0xC800000E", got)
	}
	if got := WithCRC(0x15123400); got != 0x15123408 {
		t.Errorf("WithCRC = 0x%08X, expected 0x15123408", got)
	}
}
