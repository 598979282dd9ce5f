// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

// Display tokens
const (
	CRCOKToken            = "CRC_OK"
	CRCErrorToken         = "CRC_ERROR"
	LengthErrorToken      = "Frame length error"
	WriteToken            = "write"
	ReadToken             = "read"
	UnknownRegisterToken  = "Error, not possible index value"
	FrameByteSize         = 4
	FrameHexDigits        = 8
	RegisterValueHexDigit = 4
)

// Frame layout
const (
	ReadWriteBitPosition = 31
	RegisterAddrPosition = 24
	RegisterAddrMask     = 0x7F
	DataPosition         = 8
	DataMask             = 0xFFFF
	CmdPosition          = 4
	CmdMask              = 0x0F
	CRCMask              = 0x0F
	ErrorStatBitPosition = 7
	StatPosition         = 4
	StatMask             = 0x07

	// 12-bit special data frames
	Ch1HighPosition = 16
	Ch1LowPosition  = 8
	Ch2HighPosition = 24
	Ch2LowPosition  = 12
	ChHighMask      = 0xFF
	ChLowMask       = 0x0F
	ChannelBits     = 12
)

// Status byte (MISO bits 31-24) flags
const (
	StatPrevCRCBit   = 31
	StatCfgResetBit  = 30
	StatSysAlertBit  = 29
	StatAFEAlertBit  = 28
	StatXBit         = 27
	StatYBit         = 26
	StatZBit         = 25
	StatTBit         = 24
	RegisterCount    = 0x15
	MaxRegisterIndex = RegisterCount - 1
)

// Conversion constants (typical datasheet values)
const (
	TempADCT0        = 17522
	TempADCRes       = 60.0
	TempSensT0       = 25.0
	TempThresholdLSB = 4.267

	// Reference points of the T_THRX_CONFIG thresholds
	TempHiThresholdRefCode    = 0x67
	TempHiThresholdRefCelsius = 172.0
	TempLoThresholdRefCode    = 0x32
	TempLoThresholdRefCelsius = -53.0

	MagThresholdDivisor = 128.0
)
