// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"fmt"
	"time"
)

// Statistics tracks transaction statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalTransactions uint64
	ValidTransactions uint64
	Reads             uint64
	Writes            uint64
	LengthErrors      uint64
	CRCErrors         uint64
	UnknownRegisters  uint64
	DeviceFlags       uint64
	PrevCRCErrors     uint64
	ConfigResets      uint64
	Alerts            uint64

	// Rates (calculated)
	TransactionRate float64 // transactions/sec
	ErrorRate       float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a transaction and its validation errors
func (s *Statistics) Update(t *DecodedTransaction, validationErrors []ValidationError) {
	s.TotalTransactions++

	switch t.Direction {
	case DirectionRead:
		s.Reads++
	case DirectionWrite:
		s.Writes++
	}

	if len(validationErrors) == 0 {
		s.ValidTransactions++
	}

	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyLengthError:
			s.LengthErrors++
		case AnomalyCRCError:
			s.CRCErrors++
		case AnomalyUnknownRegister:
			s.UnknownRegisters++
		case AnomalyPrevCRCError:
			s.PrevCRCErrors++
			s.DeviceFlags++
		case AnomalyConfigReset:
			s.ConfigResets++
			s.DeviceFlags++
		case AnomalyAlert:
			s.Alerts++
			s.DeviceFlags++
		}
	}

	s.LastUpdateTime = time.Now()
}

// ErrorCount returns the number of bus-level errors (device flags excluded)
func (s *Statistics) ErrorCount() uint64 {
	return s.LengthErrors + s.CRCErrors + s.UnknownRegisters
}

// CalculateRates calculates transaction and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.TransactionRate = float64(s.TotalTransactions) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)
	total := s.TotalTransactions

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d (%d reads, %d writes)\n", total, s.Reads, s.Writes)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidTransactions, percent(s.ValidTransactions, total))

	if s.LengthErrors > 0 {
		result += fmt.Sprintf("Length Errors:   %8d (%.1f%%)\n", s.LengthErrors, percent(s.LengthErrors, total))
	}
	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, percent(s.CRCErrors, total))
	}
	if s.UnknownRegisters > 0 {
		result += fmt.Sprintf("Unknown Regs:    %8d (%.1f%%)\n", s.UnknownRegisters, percent(s.UnknownRegisters, total))
	}
	if s.DeviceFlags > 0 {
		result += fmt.Sprintf("Device Flags:    %8d\n", s.DeviceFlags)
		if s.PrevCRCErrors > 0 {
			result += fmt.Sprintf("  Prev CRC Error:   %5d\n", s.PrevCRCErrors)
		}
		if s.ConfigResets > 0 {
			result += fmt.Sprintf("  Config Reset:     %5d\n", s.ConfigResets)
		}
		if s.Alerts > 0 {
			result += fmt.Sprintf("  Alerts:           %5d\n", s.Alerts)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.TransactionRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
