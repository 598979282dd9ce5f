// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

// Command is a host request frame (MOSI)
type Command struct {
	Read    bool
	Address uint8
	Data    uint16
	Cmd     uint8 // CMD3..CMD0, e.g. start conversion
}

// WithCRC replaces the low nibble of frame with its computed CRC
func WithCRC(frame uint32) uint32 {
	frame &^= CRCMask
	return frame | uint32(CalculateCRC(frame))
}

// EncodeFrame builds a MOSI frame word with a valid CRC
func EncodeFrame(c Command) uint32 {
	var frame uint32
	if c.Read {
		frame = SetBit(1, ReadWriteBitPosition)
	}
	frame |= uint32(c.Address&RegisterAddrMask) << RegisterAddrPosition
	frame |= uint32(c.Data) << DataPosition
	frame |= uint32(c.Cmd&CmdMask) << CmdPosition
	return WithCRC(frame)
}

// EncodeReadCommand returns the wire bytes of a register read request
func EncodeReadCommand(addr uint8, cmd uint8) []byte {
	return Uint32ToBytes(EncodeFrame(Command{Read: true, Address: addr, Cmd: cmd}))
}

// EncodeWriteCommand returns the wire bytes of a register write request
func EncodeWriteCommand(addr uint8, data uint16, cmd uint8) []byte {
	return Uint32ToBytes(EncodeFrame(Command{Address: addr, Data: data, Cmd: cmd}))
}

// EncodeResponse builds a regular MISO frame: status byte, 16-bit data,
// ERROR_STAT/STAT nibble and CRC
func EncodeResponse(status uint8, data uint16, stat uint8) uint32 {
	frame := uint32(status)<<24 | uint32(data)<<DataPosition | uint32(stat&0x0F)<<StatPosition
	return WithCRC(frame)
}

// EncodeSpecialResponse builds a 12-bit data MISO frame from two channel codes
func EncodeSpecialResponse(ch1, ch2 uint16, stat uint8) uint32 {
	c1 := uint32(ch1) & 0x0FFF
	c2 := uint32(ch2) & 0x0FFF
	frame := (c2>>4)<<Ch2HighPosition |
		(c1>>4)<<Ch1HighPosition |
		(c2&ChLowMask)<<Ch2LowPosition |
		(c1&ChLowMask)<<Ch1LowPosition |
		uint32(stat&0x0F)<<StatPosition
	return WithCRC(frame)
}
