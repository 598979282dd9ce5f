// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDataType = errors.New("invalid data type")
	ErrInvalidRange    = errors.New("invalid magnetic range")
)

// DataType is the SYSTEM_CONFIG.DATA_TYPE setting the bus traffic was captured with
type DataType uint8

const (
	DataTypeDefault32Bit DataType = iota // 0h: regular 32-bit register access
	DataTypeXY                           // 1h
	DataTypeXZ                           // 2h
	DataTypeZY                           // 3h
	DataTypeXT                           // 4h
	DataTypeYT                           // 5h
	DataTypeZT                           // 6h
	DataTypeAM                           // 7h: angle and magnitude
)

var dataTypeNames = []string{"default", "xy", "xz", "zy", "xt", "yt", "zt", "am"}

var dataTypeDescriptions = []string{
	"DATA_TYPE = 0h, Default 32-bit register access",
	"DATA_TYPE = 1h, 12-Bit XY data access",
	"DATA_TYPE = 2h, 12-Bit XZ data access",
	"DATA_TYPE = 3h, 12-Bit ZY data access",
	"DATA_TYPE = 4h, 12-Bit XT data access",
	"DATA_TYPE = 5h, 12-Bit YT data access",
	"DATA_TYPE = 6h, 12-Bit ZT data access",
	"DATA_TYPE = 7h, 12-Bit AM data access",
}

// String returns the short option name
func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("DataType(%d)", uint8(d))
}

// Description returns the long name of the data type
func (d DataType) Description() string {
	if int(d) < len(dataTypeDescriptions) {
		return dataTypeDescriptions[d]
	}
	return d.String()
}

// IsSpecial reports whether frames carry two 12-bit channels instead of a register value
func (d DataType) IsSpecial() bool {
	return d != DataTypeDefault32Bit
}

// ParseDataType accepts the short name ("xy"), the hex code ("1h", "0x1") or the digit
func ParseDataType(s string) (DataType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, name := range dataTypeNames {
		if v == name {
			return DataType(i), nil
		}
	}
	v = strings.TrimSuffix(strings.TrimPrefix(v, "0x"), "h")
	if len(v) == 1 && v[0] >= '0' && v[0] <= '7' {
		return DataType(v[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDataType, s)
}

// BrRange is the selected full-scale magnetic range of one axis
type BrRange uint8

const (
	RangeNotSelected BrRange = iota
	RangeA1_50mT             // TMAG5170A1, 0h
	RangeA1_25mT             // TMAG5170A1, 1h
	RangeA1_100mT            // TMAG5170A1, 2h
	RangeA2_150mT            // TMAG5170A2, 0h
	RangeA2_75mT             // TMAG5170A2, 1h
	RangeA2_300mT            // TMAG5170A2, 2h
)

type rangeInfo struct {
	name  string
	label string
	mT    float64
	code  uint8
}

var rangeTable = []rangeInfo{
	RangeNotSelected: {"none", "-", 0, 0},
	RangeA1_50mT:     {"a1-50", "±50mT (TMAG5170A1)", 50, 0x0},
	RangeA1_25mT:     {"a1-25", "±25mT (TMAG5170A1)", 25, 0x1},
	RangeA1_100mT:    {"a1-100", "±100mT (TMAG5170A1)", 100, 0x2},
	RangeA2_150mT:    {"a2-150", "±150mT (TMAG5170A2)", 150, 0x0},
	RangeA2_75mT:     {"a2-75", "±75mT (TMAG5170A2)", 75, 0x1},
	RangeA2_300mT:    {"a2-300", "±300mT (TMAG5170A2)", 300, 0x2},
}

// RangeChoices lists the ranges in the order they are offered to the user
var RangeChoices = []BrRange{
	RangeNotSelected,
	RangeA2_150mT, RangeA2_75mT, RangeA2_300mT,
	RangeA1_50mT, RangeA1_25mT, RangeA1_100mT,
}

// MilliTesla returns the full-scale range, false when no range is selected
func (r BrRange) MilliTesla() (float64, bool) {
	if r == RangeNotSelected || int(r) >= len(rangeTable) {
		return 0, false
	}
	return rangeTable[r].mT, true
}

// Code returns the X/Y/Z_RANGE register code for the range
func (r BrRange) Code() uint8 {
	if int(r) >= len(rangeTable) {
		return 0
	}
	return rangeTable[r].code
}

// String returns the short option name
func (r BrRange) String() string {
	if int(r) < len(rangeTable) {
		return rangeTable[r].name
	}
	return fmt.Sprintf("BrRange(%d)", uint8(r))
}

// Label returns the display label ("±150mT (TMAG5170A2)")
func (r BrRange) Label() string {
	if int(r) < len(rangeTable) {
		return rangeTable[r].label
	}
	return r.String()
}

// ParseBrRange accepts a short name ("a2-150"), the display label, or "-"/"" for none
func ParseBrRange(s string) (BrRange, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RangeNotSelected, nil
	}
	for i, info := range rangeTable {
		if v == info.name || v == strings.ToLower(info.label) {
			return BrRange(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
}

// Config selects how frames are interpreted
type Config struct {
	DataType DataType
	XRange   BrRange
	YRange   BrRange
	ZRange   BrRange

	// TempAngleConversion enables Celsius and degree strings
	TempAngleConversion bool

	// CRCCheck reports CRC mismatches as anomalies. CRCs are computed regardless.
	CRCCheck bool

	// Optional field groups
	CmdStatGroup bool
	StatusGroup  bool
}

// DefaultConfig returns regular 32-bit access with no ranges selected
func DefaultConfig() Config {
	return Config{
		DataType:            DataTypeDefault32Bit,
		TempAngleConversion: true,
		CRCCheck:            true,
		CmdStatGroup:        true,
		StatusGroup:         true,
	}
}

// AxisRange returns the configured range for axis 'x', 'y' or 'z'
func (c *Config) AxisRange(axis byte) BrRange {
	switch axis {
	case 'x', 'X':
		return c.XRange
	case 'y', 'Y':
		return c.YRange
	case 'z', 'Z':
		return c.ZRange
	}
	return RangeNotSelected
}
