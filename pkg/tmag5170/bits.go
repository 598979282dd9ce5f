// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFrameLength is returned when a byte sequence is not exactly one frame long
var ErrFrameLength = errors.New("frame length error")

// MaskedValue returns (value >> position) & mask
func MaskedValue(value uint32, position uint, mask uint32) uint32 {
	return (value >> position) & mask
}

// GetBit returns bit i of value (0 or 1)
func GetBit(value uint32, i uint) uint8 {
	return uint8((value >> i) & 0x01)
}

// SetBit returns bit shifted to position
func SetBit(bit uint8, position uint) uint32 {
	return uint32(bit&0x01) << position
}

// SetBitInValue ORs bit at position into value
func SetBitInValue(bit uint8, position uint, value uint32) uint32 {
	return SetBit(bit, position) | value
}

// SignExtend interprets the low width bits of value as two's complement and
// returns the signed result represented on outBits bits.
// Returns false when the width or output size is unusable.
func SignExtend(value uint32, width, outBits uint) (int32, bool) {
	if width == 0 || outBits == 0 || width > 32 || outBits > 32 || outBits < width {
		return 0, false
	}
	shift := 32 - width
	return int32(value<<shift) >> shift, true
}

// BytesToUint32 assembles exactly four bytes big-endian into a frame word
func BytesToUint32(data []byte) (uint32, error) {
	if len(data) != FrameByteSize {
		return 0, fmt.Errorf("%w: got %d bytes, expected %d", ErrFrameLength, len(data), FrameByteSize)
	}
	return binary.BigEndian.Uint32(data), nil
}

// Uint32ToBytes splits a frame word into its four wire bytes
func Uint32ToBytes(frame uint32) []byte {
	out := make([]byte, FrameByteSize)
	binary.BigEndian.PutUint32(out, frame)
	return out
}

// FormatHex renders value as 0x-prefixed upper-case hex, zero padded to digits
func FormatHex(value uint32, digits int) string {
	return fmt.Sprintf("0x%0*X", digits, value)
}
