// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

const sampleYAML = `
decoder:
  data_type: XY
  x_range: A2-150
  y_range: a2-75
  temp_angle_conversion: false
  split_frames: true
connection:
  port: /dev/ttyACM0
spi:
  device: /dev/spidev1.0
  registers: [TEMP_RESULT, "0x09"]
`

func boolPtr(b bool) *bool { return &b }

// ---- tests ----

func TestLoad_Sample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmagscope.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Decoder.DataType != "xy" || cfg.Decoder.XRange != "a2-150" {
		t.Errorf("decoder options not normalized: %+v", cfg.Decoder)
	}
	if !cfg.Decoder.SplitFrames {
		t.Error("split_frames should be set")
	}
	if cfg.Connection.Baud != DefaultBaud {
		t.Errorf("baud = %d, expected default %d", cfg.Connection.Baud, DefaultBaud)
	}
	if cfg.SPI.SpeedHz != DefaultSPISpeedHz || cfg.SPI.IntervalMs != DefaultIntervalMs {
		t.Errorf("spi defaults not applied: %+v", cfg.SPI)
	}
	if cfg.SPI.Device != "/dev/spidev1.0" {
		t.Errorf("explicit device overwritten: %q", cfg.SPI.Device)
	}
	if len(cfg.SPI.Registers) != 2 || cfg.SPI.Registers[0] != "temp_result" {
		t.Errorf("registers = %v", cfg.SPI.Registers)
	}

	dec, err := cfg.Decoder.ToDecoder()
	if err != nil {
		t.Fatalf("ToDecoder failed: %v", err)
	}
	if dec.DataType != tmag5170.DataTypeXY || dec.XRange != tmag5170.RangeA2_150mT || dec.YRange != tmag5170.RangeA2_75mT {
		t.Errorf("unexpected decoder config: %+v", dec)
	}
	if dec.ZRange != tmag5170.RangeNotSelected {
		t.Errorf("z range should be unset, got %v", dec.ZRange)
	}
	if dec.TempAngleConversion {
		t.Error("temp_angle_conversion: false was ignored")
	}
	if !dec.CRCCheck || !dec.CmdStatGroup || !dec.StatusGroup {
		t.Error("unset options should keep decoder defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, err := Parse([]byte("decoder: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestToDecoder_Empty(t *testing.T) {
	dec, err := DecoderConfig{}.ToDecoder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec != tmag5170.DefaultConfig() {
		t.Errorf("empty config should match defaults, got %+v", dec)
	}

	dec, _ = DecoderConfig{CRCCheck: boolPtr(false)}.ToDecoder()
	if dec.CRCCheck {
		t.Error("crc_check: false was ignored")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"bad data type", Config{Decoder: DecoderConfig{DataType: "xyz"}}, "decoder"},
		{"bad range", Config{Decoder: DecoderConfig{YRange: "a3-10"}}, "y_range"},
		{"port and url", Config{Connection: ConnectionConfig{Port: "/dev/ttyUSB0", URL: "ws://h/ws"}}, "mutually exclusive"},
		{"http url", Config{Connection: ConnectionConfig{URL: "http://h/ws"}}, "ws://"},
		{"negative baud", Config{Connection: ConnectionConfig{Baud: -1}}, "baud"},
		{"spi too fast", Config{SPI: SPIConfig{SpeedHz: 20_000_000}}, "speed_hz"},
		{"unknown register", Config{SPI: SPIConfig{Registers: []string{"FOO"}}}, "FOO"},
		{"duplicate register", Config{SPI: SPIConfig{Registers: []string{"temp_result", "0x0C"}}}, "twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_UnknownRegisterWrapsSentinel(t *testing.T) {
	err := Validate(&Config{SPI: SPIConfig{Registers: []string{"0x20"}}})
	if !errors.Is(err, tmag5170.ErrUnknownRegister) {
		t.Errorf("expected ErrUnknownRegister, got %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := Config{Decoder: DecoderConfig{DataType: "XY"}}
	if err := Validate(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Decoder.DataType != "XY" || cfg.SPI.Device != "" {
		t.Error("Validate must not mutate the configuration")
	}
}

func TestNormalize_Nil(t *testing.T) {
	Normalize(nil)
}
