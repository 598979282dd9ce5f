// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// DECODER OPTIONS
	// ------------------------------------------------------------

	if _, err := cfg.Decoder.ToDecoder(); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}

	// ------------------------------------------------------------
	// CONNECTION (serial XOR websocket)
	// ------------------------------------------------------------

	c := cfg.Connection
	if c.Port != "" && c.URL != "" {
		return fmt.Errorf("connection: port and url are mutually exclusive")
	}
	if c.Baud < 0 {
		return fmt.Errorf("connection: baud must be positive, got %d", c.Baud)
	}
	if c.URL != "" {
		lower := strings.ToLower(c.URL)
		if !strings.HasPrefix(lower, "ws://") && !strings.HasPrefix(lower, "wss://") {
			return fmt.Errorf("connection: url %q must use ws:// or wss://", c.URL)
		}
	}

	// ------------------------------------------------------------
	// SPI POLLING
	// ------------------------------------------------------------

	s := cfg.SPI
	if s.SpeedHz < 0 || s.SpeedHz > MaxSPISpeedHz {
		return fmt.Errorf("spi: speed_hz %d out of range (max %d)", s.SpeedHz, MaxSPISpeedHz)
	}
	if s.IntervalMs < 0 {
		return fmt.Errorf("spi: interval_ms must not be negative")
	}

	seen := make(map[uint8]string)
	for _, name := range s.Registers {
		reg, err := tmag5170.LookupRegisterByName(name)
		if err != nil {
			return fmt.Errorf("spi: register %q: %w", name, err)
		}
		if prev, exists := seen[reg.Address]; exists {
			return fmt.Errorf("spi: register %q listed twice (also as %q)", name, prev)
		}
		seen[reg.Address] = name
	}

	return nil
}
