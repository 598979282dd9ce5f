// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownRegister is returned for addresses outside the register map
var ErrUnknownRegister = errors.New("unknown register")

// Register addresses
const (
	RegDeviceConfig    uint8 = 0x00
	RegSensorConfig    uint8 = 0x01
	RegSystemConfig    uint8 = 0x02
	RegAlertConfig     uint8 = 0x03
	RegXThrxConfig     uint8 = 0x04
	RegYThrxConfig     uint8 = 0x05
	RegZThrxConfig     uint8 = 0x06
	RegTThrxConfig     uint8 = 0x07
	RegConvStatus      uint8 = 0x08
	RegXChResult       uint8 = 0x09
	RegYChResult       uint8 = 0x0A
	RegZChResult       uint8 = 0x0B
	RegTempResult      uint8 = 0x0C
	RegAFEStatus       uint8 = 0x0D
	RegSysStatus       uint8 = 0x0E
	RegTestConfig      uint8 = 0x0F
	RegOscMonitor      uint8 = 0x10
	RegMagGainConfig   uint8 = 0x11
	RegMagOffsetConfig uint8 = 0x12
	RegAngleResult     uint8 = 0x13
	RegMagnitudeResult uint8 = 0x14
)

// bitField is one named field of a register, bits hi..lo inclusive
type bitField struct {
	name string
	hi   uint
	lo   uint
}

func (f bitField) value(data uint16) uint32 {
	width := f.hi - f.lo + 1
	return MaskedValue(uint32(data), f.lo, (1<<width)-1)
}

func (f bitField) label() string {
	if f.hi == f.lo {
		return fmt.Sprintf("[%d] %s", f.hi, f.name)
	}
	return fmt.Sprintf("[%d-%d] %s", f.hi, f.lo, f.name)
}

// decodeFunc renders the decoded description of a 16-bit register value
type decodeFunc func(cfg *Config, data uint16) string

// Register describes one entry of the register map
type Register struct {
	Address uint8
	Name    string
	fields  []bitField
	decode  decodeFunc
}

// Decode renders the decoded description of data under cfg
func (r *Register) Decode(cfg *Config, data uint16) string {
	if r.decode != nil {
		return r.decode(cfg, data)
	}
	return decodeFields(r.fields, data)
}

// FieldLabels lists the bit fields of a plain bit-field register, MSB first.
// Registers with computed values return nil.
func (r *Register) FieldLabels() []string {
	if r.decode != nil {
		return nil
	}
	labels := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		labels = append(labels, f.label())
	}
	return labels
}

// decodeFields renders "[15-14] NAME: 0xV, [13] NAME: 0xV, ..."
func decodeFields(fields []bitField, data uint16) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: 0x%X", f.label(), f.value(data)))
	}
	return strings.Join(parts, ", ")
}

var registerMap = [RegisterCount]Register{
	{Address: RegDeviceConfig, Name: "DEVICE_CONFIG", fields: []bitField{
		{"RESERVED", 15, 15},
		{"CONV_AVG", 14, 12},
		{"RESERVED", 11, 10},
		{"MAG_TEMPCO", 9, 8},
		{"RESERVED", 7, 7},
		{"OPERATING_MODE", 6, 4},
		{"T_CH_EN", 3, 3},
		{"T_RATE", 2, 2},
		{"T_HLT_EN", 1, 1},
		{"RESERVED", 0, 0},
	}},
	{Address: RegSensorConfig, Name: "SENSOR_CONFIG", fields: []bitField{
		{"ANGLE_EN", 15, 14},
		{"SLEEPTIME", 13, 10},
		{"MAG_CH_EN", 9, 6},
		{"Z_RANGE", 5, 4},
		{"Y_RANGE", 3, 2},
		{"X_RANGE", 1, 0},
	}},
	{Address: RegSystemConfig, Name: "SYSTEM_CONFIG", fields: []bitField{
		{"RESERVED", 15, 14},
		{"DIAG_SEL", 13, 12},
		{"RESERVED", 11, 11},
		{"TRIGGER_MODE", 10, 9},
		{"DATA_TYPE", 8, 6},
		{"DIAG_EN", 5, 5},
		{"RESERVED", 4, 3},
		{"Z_HLT_EN", 2, 2},
		{"Y_HLT_EN", 1, 1},
		{"X_HLT_EN", 0, 0},
	}},
	{Address: RegAlertConfig, Name: "ALERT_CONFIG", fields: []bitField{
		{"RESERVED", 15, 14},
		{"ALERT_LATCH", 13, 13},
		{"ALERT_MODE", 12, 12},
		{"STATUS_ALRT", 11, 11},
		{"RESERVED", 10, 9},
		{"RSLT_ALRT", 8, 8},
		{"RESERVED", 7, 6},
		{"THRX_COUNT", 5, 4},
		{"T_THRX_ALRT", 3, 3},
		{"Z_THRX_ALRT", 2, 2},
		{"Y_THRX_ALRT", 1, 1},
		{"X_THRX_ALRT", 0, 0},
	}},
	{Address: RegXThrxConfig, Name: "X_THRX_CONFIG", decode: magneticThresholdDecoder('X')},
	{Address: RegYThrxConfig, Name: "Y_THRX_CONFIG", decode: magneticThresholdDecoder('Y')},
	{Address: RegZThrxConfig, Name: "Z_THRX_CONFIG", decode: magneticThresholdDecoder('Z')},
	{Address: RegTThrxConfig, Name: "T_THRX_CONFIG", decode: decodeTemperatureThresholds},
	{Address: RegConvStatus, Name: "CONV_STATUS", fields: []bitField{
		{"RESERVED", 15, 14},
		{"RDY", 13, 13},
		{"A", 12, 12},
		{"T", 11, 11},
		{"Z", 10, 10},
		{"Y", 9, 9},
		{"X", 8, 8},
		{"RESERVED", 7, 7},
		{"SET_COUNT", 6, 4},
		{"RESERVED", 3, 2},
		{"ALRT_STATUS", 1, 0},
	}},
	{Address: RegXChResult, Name: "X_CH_RESULT", decode: channelResultDecoder('X')},
	{Address: RegYChResult, Name: "Y_CH_RESULT", decode: channelResultDecoder('Y')},
	{Address: RegZChResult, Name: "Z_CH_RESULT", decode: channelResultDecoder('Z')},
	{Address: RegTempResult, Name: "TEMP_RESULT", decode: decodeTempResult},
	{Address: RegAFEStatus, Name: "AFE_STATUS", fields: []bitField{
		{"CFG_RESET", 15, 15},
		{"RESERVED", 14, 13},
		{"SENS_STAT", 12, 12},
		{"TEMP_STAT", 11, 11},
		{"ZHS_STAT", 10, 10},
		{"YHS_STAT", 9, 9},
		{"XHS_STAT", 8, 8},
		{"RESERVED", 7, 2},
		{"TRIM_STAT", 1, 1},
		{"LDO_STAT", 0, 0},
	}},
	{Address: RegSysStatus, Name: "SYS_STATUS", fields: []bitField{
		{"ALRT_LVL", 15, 15},
		{"ALRT_DRV", 14, 14},
		{"SDO_DRV", 13, 13},
		{"CRC_STAT", 12, 12},
		{"FRAME_STAT", 11, 11},
		{"OPERATING_STAT", 10, 8},
		{"RESERVED", 7, 6},
		{"VCC_OV", 5, 5},
		{"VCC_UV", 4, 4},
		{"TEMP_THX", 3, 3},
		{"ZCH_THX", 2, 2},
		{"YCH_THX", 1, 1},
		{"XCH_THX", 0, 0},
	}},
	{Address: RegTestConfig, Name: "TEST_CONFIG", fields: []bitField{
		{"RESERVED", 15, 6},
		{"VER", 5, 4},
		{"RESERVED", 3, 3},
		{"CRC_DIS", 2, 2},
		{"OSC_CNT_CTL", 1, 0},
	}},
	{Address: RegOscMonitor, Name: "OSC_MONITOR", decode: func(_ *Config, data uint16) string {
		return fmt.Sprintf("[15-0] OSC_COUNT: %d", data)
	}},
	{Address: RegMagGainConfig, Name: "MAG_GAIN_CONFIG", fields: []bitField{
		{"GAIN_SELECTION", 15, 14},
		{"RESERVED", 13, 11},
		{"GAIN_VALUE", 10, 0},
	}},
	{Address: RegMagOffsetConfig, Name: "MAG_OFFSET_CONFIG", decode: decodeMagOffset},
	{Address: RegAngleResult, Name: "ANGLE_RESULT", decode: decodeAngleResult},
	{Address: RegMagnitudeResult, Name: "MAGNITUDE_RESULT", decode: func(_ *Config, data uint16) string {
		return fmt.Sprintf("[15-0] MAGNITUDE_RESULT: %d", data)
	}},
}

// LookupRegister returns the register at addr
func LookupRegister(addr uint8) (*Register, error) {
	if int(addr) >= len(registerMap) {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownRegister, addr)
	}
	return &registerMap[addr], nil
}

// LookupRegisterByName finds a register by name or address ("TEMP_RESULT", "0x0C", "12")
func LookupRegisterByName(name string) (*Register, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i := range registerMap {
		if registerMap[i].Name == n {
			return &registerMap[i], nil
		}
	}
	addr, err := strconv.ParseUint(strings.ToLower(n), 0, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return LookupRegister(uint8(addr))
}

// RegisterName returns the register name or the unknown-register token
func RegisterName(addr uint8) string {
	reg, err := LookupRegister(addr)
	if err != nil {
		return UnknownRegisterToken
	}
	return reg.Name
}

// DecodeRegister renders the decoded description of a register value.
// Unknown addresses yield the unknown-register token.
func DecodeRegister(cfg *Config, addr uint8, data uint16) string {
	reg, err := LookupRegister(addr)
	if err != nil {
		return UnknownRegisterToken
	}
	return reg.Decode(cfg, data)
}

// Registers returns a copy of the register map in address order
func Registers() []Register {
	out := make([]Register, len(registerMap))
	copy(out, registerMap[:])
	return out
}

// withUnit appends a unit string when there is one
func withUnit(value string, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

func magneticThresholdDecoder(axis byte) decodeFunc {
	return func(cfg *Config, data uint16) string {
		hi := int8(data >> 8)
		lo := int8(data)
		r := cfg.AxisRange(axis)
		return fmt.Sprintf("[15-8] %c_HI_THRESHOLD: %s, [7-0] %c_LO_THRESHOLD: %s",
			axis, withUnit(strconv.Itoa(int(hi)), magneticThresholdString(hi, r)),
			axis, withUnit(strconv.Itoa(int(lo)), magneticThresholdString(lo, r)))
	}
}

func decodeTemperatureThresholds(cfg *Config, data uint16) string {
	hi := int8(data >> 8)
	lo := int8(data)
	var hiStr, loStr string
	if cfg.TempAngleConversion {
		hiStr = FormatTemperature(ConvertTemperatureHiThreshold(hi))
		loStr = FormatTemperature(ConvertTemperatureLoThreshold(lo))
	}
	return fmt.Sprintf("[15-8] T_HI_THRESHOLD: %s, [7-0] T_LO_THRESHOLD: %s",
		withUnit(strconv.Itoa(int(hi)), hiStr),
		withUnit(strconv.Itoa(int(lo)), loStr))
}

func channelResultDecoder(axis byte) decodeFunc {
	return func(cfg *Config, data uint16) string {
		raw := int32(int16(data))
		unit := magneticFieldString(raw, DataTypeDefault32Bit, cfg.AxisRange(axis))
		return fmt.Sprintf("[15-0] %c_CH_RESULT: %s", axis, withUnit(strconv.Itoa(int(raw)), unit))
	}
}

func decodeTempResult(cfg *Config, data uint16) string {
	var unit string
	if cfg.TempAngleConversion {
		unit = FormatTemperature(ConvertRawTempToCelsius(int32(data), DataTypeDefault32Bit))
	}
	return "[15-0] TEMP_RESULT: " + withUnit(strconv.Itoa(int(data)), unit)
}

func decodeAngleResult(cfg *Config, data uint16) string {
	var unit string
	if cfg.TempAngleConversion {
		unit = FormatAngle(ConvertRawAngleToDegrees(uint32(data), DataTypeDefault32Bit))
	}
	return "[15-0] ANGLE_RESULT: " + withUnit(strconv.Itoa(int(data)), unit)
}

func decodeMagOffset(_ *Config, data uint16) string {
	selection := MaskedValue(uint32(data), 14, 0x3)
	value1, _ := SignExtend(MaskedValue(uint32(data), 7, 0x7F), 7, 8)
	value2, _ := SignExtend(MaskedValue(uint32(data), 0, 0x7F), 7, 8)
	return fmt.Sprintf("[15-14] OFFSET_SELECTION: 0x%X, [13-7] OFFSET_VALUE1: %d, [6-0] OFFSET_VALUE2: %d",
		selection, value1, value2)
}
