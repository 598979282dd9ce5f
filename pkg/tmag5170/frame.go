// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

// Frame is one 32-bit SPI word as seen on MOSI or MISO
type Frame struct {
	value     uint32
	byteCount int
	valid     bool
}

// NewFrame assembles a frame from the bytes captured on one line.
// Anything but exactly four bytes yields an invalid frame.
func NewFrame(data []byte) Frame {
	value, err := BytesToUint32(data)
	if err != nil {
		return Frame{byteCount: len(data)}
	}
	return Frame{value: value, byteCount: len(data), valid: true}
}

// FrameFromWord wraps a known 32-bit word
func FrameFromWord(value uint32) Frame {
	return Frame{value: value, byteCount: FrameByteSize, valid: true}
}

// Value returns the frame word (0 for invalid frames)
func (f Frame) Value() uint32 {
	return f.value
}

// Valid reports whether exactly four bytes were captured
func (f Frame) Valid() bool {
	return f.valid
}

// ByteCount returns the number of bytes captured
func (f Frame) ByteCount() int {
	return f.byteCount
}

// Bytes returns the four wire bytes, nil for invalid frames
func (f Frame) Bytes() []byte {
	if !f.valid {
		return nil
	}
	return Uint32ToBytes(f.value)
}

// String renders "0x8F000008" or the length-error token
func (f Frame) String() string {
	if !f.valid {
		return LengthErrorToken
	}
	return FormatHex(f.value, FrameHexDigits)
}

// CRC checks the frame CRC. Invalid frames report CRCStatusNone.
func (f Frame) CRC() CRCResult {
	if !f.valid {
		return CRCResult{}
	}
	return CheckCRC(f.value)
}

// IsRead reports whether the read/write bit (bit 31) is set
func (f Frame) IsRead() bool {
	return GetBit(f.value, ReadWriteBitPosition) == 1
}

// Address returns the 7-bit register address (MOSI)
func (f Frame) Address() uint8 {
	return uint8(MaskedValue(f.value, RegisterAddrPosition, RegisterAddrMask))
}

// Data returns the 16-bit register data field
func (f Frame) Data() uint16 {
	return uint16(MaskedValue(f.value, DataPosition, DataMask))
}
