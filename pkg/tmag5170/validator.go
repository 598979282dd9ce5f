// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import "fmt"

// AnomalyType represents different types of transaction anomalies
type AnomalyType int

const (
	AnomalyLengthError AnomalyType = iota
	AnomalyCRCError
	AnomalyUnknownRegister
	AnomalyPrevCRCError
	AnomalyConfigReset
	AnomalyAlert
)

// String returns a short name of the anomaly type
func (a AnomalyType) String() string {
	switch a {
	case AnomalyLengthError:
		return "LENGTH_ERROR"
	case AnomalyCRCError:
		return "CRC_ERROR"
	case AnomalyUnknownRegister:
		return "UNKNOWN_REGISTER"
	case AnomalyPrevCRCError:
		return "PREV_CRC_ERROR"
	case AnomalyConfigReset:
		return "CFG_RESET"
	case AnomalyAlert:
		return "ALERT"
	default:
		return fmt.Sprintf("ANOMALY(%d)", int(a))
	}
}

// ValidationError represents a transaction validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateTransaction checks a decoded transaction for anomalies.
// Returns a slice of validation errors (empty if the transaction is clean).
func ValidateTransaction(t *DecodedTransaction, cfg Config) []ValidationError {
	errors := []ValidationError{}

	errors = append(errors, validateLength("MOSI", t.MOSI)...)
	errors = append(errors, validateLength("MISO", t.MISO)...)

	if cfg.CRCCheck {
		errors = append(errors, validateCRC("MOSI", t.MOSICRC)...)
		errors = append(errors, validateCRC("MISO", t.MISOCRC)...)
	}

	if t.Register.HasAddress && !t.Register.Known {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownRegister,
			Message: fmt.Sprintf("Unknown register address 0x%02X (max 0x%02X)", t.Register.Address, MaxRegisterIndex),
			Details: map[string]interface{}{"address": t.Register.Address},
		})
	}

	if t.Status != nil {
		errors = append(errors, validateStatus(t.Status)...)
	}

	return errors
}

func validateLength(side string, f Frame) []ValidationError {
	if f.Valid() {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyLengthError,
		Message: fmt.Sprintf("%s frame length error (%d bytes, expected %d)", side, f.ByteCount(), FrameByteSize),
		Details: map[string]interface{}{"side": side, "received": f.ByteCount(), "expected": FrameByteSize},
	}}
}

func validateCRC(side string, r CRCResult) []ValidationError {
	if r.Status != CRCStatusError {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyCRCError,
		Message: fmt.Sprintf("%s CRC mismatch: expected 0x%X, got 0x%X", side, r.Calculated, r.FromBus),
		Details: map[string]interface{}{"side": side, "calculated": r.Calculated, "from_bus": r.FromBus},
	}}
}

func validateStatus(s *StatusGroup) []ValidationError {
	errors := []ValidationError{}

	if s.PrevCRC != 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyPrevCRCError,
			Message: "Device reported CRC error in previous frame",
			Details: map[string]interface{}{"status": s.Byte()},
		})
	}
	if s.CfgReset != 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyConfigReset,
			Message: "Device reported configuration reset",
			Details: map[string]interface{}{"status": s.Byte()},
		})
	}
	if s.SysAlert != 0 || s.AFEAlert != 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyAlert,
			Message: fmt.Sprintf("Device alert (SYS_ALRT=%d, AFE_ALRT=%d)", s.SysAlert, s.AFEAlert),
			Details: map[string]interface{}{"sys_alert": s.SysAlert, "afe_alert": s.AFEAlert},
		})
	}

	return errors
}
