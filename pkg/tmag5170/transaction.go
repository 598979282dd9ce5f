// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import "time"

// Transaction is one chip-select window of raw bus bytes
type Transaction struct {
	Start time.Time
	End   time.Time
	MOSI  []byte
	MISO  []byte
}

// Direction of a register access, taken from MOSI bit 31
type Direction int

const (
	DirectionUnknown Direction = iota // MOSI frame unavailable
	DirectionWrite
	DirectionRead
)

// String returns the display token
func (d Direction) String() string {
	switch d {
	case DirectionRead:
		return ReadToken
	case DirectionWrite:
		return WriteToken
	default:
		return ""
	}
}

// CmdStatGroup holds the low-nibble command bits of MOSI and the status bits of MISO
type CmdStatGroup struct {
	HasCommand bool
	Cmd3       uint8
	Cmd2       uint8
	Cmd1       uint8
	Cmd0       uint8

	// Set only when both frames are available
	HasStatus bool
	ErrorStat uint8
	Stat      uint8 // STAT[2:0]
}

// Command returns the four command bits as a nibble
func (c *CmdStatGroup) Command() uint8 {
	return c.Cmd3<<3 | c.Cmd2<<2 | c.Cmd1<<1 | c.Cmd0
}

// StatusGroup is the status byte in MISO bits 31-24 of regular frames
type StatusGroup struct {
	PrevCRC  uint8
	CfgReset uint8
	SysAlert uint8 // SYS_ALRT_STATUS1
	AFEAlert uint8 // AFE_ALRT_STATUS0
	X        uint8
	Y        uint8
	Z        uint8
	T        uint8
}

// Byte returns the status bits packed back into one byte
func (s *StatusGroup) Byte() uint8 {
	return s.PrevCRC<<7 | s.CfgReset<<6 | s.SysAlert<<5 | s.AFEAlert<<4 |
		s.X<<3 | s.Y<<2 | s.Z<<1 | s.T
}

// RegisterAccess is the register part of a decoded transaction
type RegisterAccess struct {
	Address    uint8
	HasAddress bool
	Name       string
	Known      bool
	Value      uint16
	HasValue   bool
	Decoding   string
}

// Channel is one 12-bit conversion result of a special data frame
type Channel struct {
	Raw  int32
	Unit string // "[x.xx mT]", "[x.xx Celsius]", "[x.xx Degrees]" or ""
}

// ChannelPair carries the two channels of a special data frame
type ChannelPair struct {
	Ch1 Channel
	Ch2 Channel
}

// DecodedTransaction is the full decode of one MOSI/MISO frame pair
type DecodedTransaction struct {
	Index    uint64
	Start    time.Time
	End      time.Time
	DataType DataType

	MOSI    Frame
	MISO    Frame
	MOSICRC CRCResult
	MISOCRC CRCResult

	Direction Direction
	Register  RegisterAccess

	CmdStat  *CmdStatGroup // nil when the group is disabled
	Status   *StatusGroup  // regular frames only, nil when disabled or MISO unavailable
	Channels *ChannelPair  // special frames only, nil when MISO unavailable
}

// LengthError reports whether either side was not exactly four bytes
func (t *DecodedTransaction) LengthError() bool {
	return !t.MOSI.Valid() || !t.MISO.Valid()
}

// CRCOK reports whether both frames are present and carry a valid CRC
func (t *DecodedTransaction) CRCOK() bool {
	return t.MOSICRC.Status == CRCStatusOK && t.MISOCRC.Status == CRCStatusOK
}

// Special reports whether the transaction was decoded as a 12-bit data frame
func (t *DecodedTransaction) Special() bool {
	return t.DataType.IsSpecial()
}
