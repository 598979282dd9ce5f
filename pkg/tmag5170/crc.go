// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

// CRCStatus is the outcome of a CRC check on one frame
type CRCStatus int

const (
	CRCStatusNone  CRCStatus = iota // frame not available
	CRCStatusOK
	CRCStatusError
)

// String returns the display token for the status
func (s CRCStatus) String() string {
	switch s {
	case CRCStatusOK:
		return CRCOKToken
	case CRCStatusError:
		return CRCErrorToken
	default:
		return ""
	}
}

// CRCResult holds the computed and received CRC nibbles of one frame
type CRCResult struct {
	Status     CRCStatus
	Calculated uint8
	FromBus    uint8
}

// CalculateCRC computes the 4-bit CRC over the upper 28 bits of a frame.
// Polynomial x^4 + x + 1, seed 0xF, the low nibble is fed as zero.
func CalculateCRC(frame uint32) uint8 {
	padded := frame &^ CRCMask
	crc := uint8(crcInitial)
	for i := 31; i >= 0; i-- {
		inv := GetBit(padded, uint(i)) ^ ((crc >> 3) & 0x01)
		crc = (((crc >> 2) & 0x01) << 3) |
			(((crc >> 1) & 0x01) << 2) |
			(((crc & 0x01) ^ inv) << 1) |
			inv
		crc &= CRCMask
	}
	return crc
}

// CheckCRC compares the computed CRC with the nibble carried in the frame
func CheckCRC(frame uint32) CRCResult {
	result := CRCResult{
		Calculated: CalculateCRC(frame),
		FromBus:    uint8(frame & CRCMask),
	}
	if result.Calculated == result.FromBus {
		result.Status = CRCStatusOK
	} else {
		result.Status = CRCStatusError
	}
	return result
}

const crcInitial = 0x0F
