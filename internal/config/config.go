// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

type Config struct {
	Decoder    DecoderConfig    `yaml:"decoder"`
	Connection ConnectionConfig `yaml:"connection"`
	SPI        SPIConfig        `yaml:"spi"`
}

// ---- DECODER ----

type DecoderConfig struct {
	DataType string `yaml:"data_type"` // default, xy, xz, zy, xt, yt, zt, am
	XRange   string `yaml:"x_range"`   // none, a1-25, a1-50, a1-100, a2-75, a2-150, a2-300
	YRange   string `yaml:"y_range"`
	ZRange   string `yaml:"z_range"`

	// nil means "use the default" (enabled)
	TempAngleConversion *bool `yaml:"temp_angle_conversion"`
	CRCCheck            *bool `yaml:"crc_check"`
	CmdStatGroup        *bool `yaml:"cmd_stat"`
	StatusGroup         *bool `yaml:"status"`

	SplitFrames bool `yaml:"split_frames"`
}

// ---- CONNECTION ----

type ConnectionConfig struct {
	Port     string `yaml:"port"`
	Baud     int    `yaml:"baud"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Insecure bool   `yaml:"insecure"`
}

// ---- SPI (live polling) ----

type SPIConfig struct {
	Device     string   `yaml:"device"`
	SpeedHz    int64    `yaml:"speed_hz"`
	IntervalMs int      `yaml:"interval_ms"`
	Registers  []string `yaml:"registers"`
}

// Defaults
const (
	DefaultBaud       = 115200
	DefaultUsername   = "admin"
	DefaultSPIDevice  = "/dev/spidev0.0"
	DefaultSPISpeedHz = 1_000_000
	MaxSPISpeedHz     = 10_000_000
	DefaultIntervalMs = 100
)

// DefaultRegisters are polled by the live command when none are configured
var DefaultRegisters = []string{"conv_status", "x_ch_result", "y_ch_result", "z_ch_result", "temp_result"}

// Load reads a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ToDecoder builds the decoder configuration. Unset options keep the
// decoder defaults.
func (d DecoderConfig) ToDecoder() (tmag5170.Config, error) {
	cfg := tmag5170.DefaultConfig()

	if d.DataType != "" {
		dt, err := tmag5170.ParseDataType(d.DataType)
		if err != nil {
			return cfg, err
		}
		cfg.DataType = dt
	}

	ranges := []struct {
		name  string
		value string
		dst   *tmag5170.BrRange
	}{
		{"x_range", d.XRange, &cfg.XRange},
		{"y_range", d.YRange, &cfg.YRange},
		{"z_range", d.ZRange, &cfg.ZRange},
	}
	for _, r := range ranges {
		br, err := tmag5170.ParseBrRange(r.value)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", r.name, err)
		}
		*r.dst = br
	}

	cfg.TempAngleConversion = boolOr(d.TempAngleConversion, cfg.TempAngleConversion)
	cfg.CRCCheck = boolOr(d.CRCCheck, cfg.CRCCheck)
	cfg.CmdStatGroup = boolOr(d.CmdStatGroup, cfg.CmdStatGroup)
	cfg.StatusGroup = boolOr(d.StatusGroup, cfg.StatusGroup)
	return cfg, nil
}
