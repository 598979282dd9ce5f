// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// DECODER: option names are case-insensitive
	// ------------------------------------------------------------

	d := &cfg.Decoder
	d.DataType = strings.ToLower(strings.TrimSpace(d.DataType))
	d.XRange = strings.ToLower(strings.TrimSpace(d.XRange))
	d.YRange = strings.ToLower(strings.TrimSpace(d.YRange))
	d.ZRange = strings.ToLower(strings.TrimSpace(d.ZRange))
	if d.DataType == "" {
		d.DataType = "default"
	}

	// ------------------------------------------------------------
	// CONNECTION DEFAULTS
	// ------------------------------------------------------------

	if cfg.Connection.Port != "" && cfg.Connection.Baud == 0 {
		cfg.Connection.Baud = DefaultBaud
	}
	if cfg.Connection.URL != "" && cfg.Connection.Username == "" {
		cfg.Connection.Username = DefaultUsername
	}

	// ------------------------------------------------------------
	// SPI DEFAULTS
	// ------------------------------------------------------------

	s := &cfg.SPI
	if s.Device == "" {
		s.Device = DefaultSPIDevice
	}
	if s.SpeedHz == 0 {
		s.SpeedHz = DefaultSPISpeedHz
	}
	if s.IntervalMs == 0 {
		s.IntervalMs = DefaultIntervalMs
	}
	if len(s.Registers) == 0 {
		s.Registers = append([]string(nil), DefaultRegisters...)
	}
	for i := range s.Registers {
		s.Registers[i] = strings.ToLower(strings.TrimSpace(s.Registers[i]))
	}
}

// LoadAndValidate loads, validates and normalizes a configuration file
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}
