// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-3

func TestConvertRawTempToCelsius(t *testing.T) {
	tests := []struct {
		raw      int32
		expected float64
	}{
		{0, -267.0333},
		{17522, 25},
		{20522, 75},
		{13622, -40},
		{65535, 825.2167},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, ConvertRawTempToCelsius(tt.raw, DataTypeDefault32Bit), delta, "raw=%d", tt.raw)
	}
}

func TestConvertRawTempToCelsius_12Bit(t *testing.T) {
	// 12-bit code is the 16-bit code divided by 16
	assert.InDelta(t, 24.9667, ConvertRawTempToCelsius(1095, DataTypeXT), delta)
	assert.InDelta(t, 25+16*(2000-1095.125)/60, ConvertRawTempToCelsius(2000, DataTypeZT), delta)
}

func TestConvertRawMagneticField(t *testing.T) {
	tests := []struct {
		raw      int32
		r        BrRange
		expected float64
	}{
		{32767, RangeA2_150mT, 149.9954},
		{-32768, RangeA2_150mT, -150},
		{16000, RangeA2_150mT, 73.2421875},
		{-32768, RangeA1_25mT, -25},
		{16384, RangeA2_300mT, 150},
	}
	for _, tt := range tests {
		mT, ok := ConvertRawMagneticFieldToMilliTesla(tt.raw, DataTypeDefault32Bit, tt.r)
		require.True(t, ok)
		assert.InDelta(t, tt.expected, mT, delta, "raw=%d range=%v", tt.raw, tt.r)
	}

	_, ok := ConvertRawMagneticFieldToMilliTesla(100, DataTypeDefault32Bit, RangeNotSelected)
	assert.False(t, ok)
}

func TestConvertRawMagneticField_12Bit(t *testing.T) {
	mT, ok := ConvertRawMagneticFieldToMilliTesla(2047, DataTypeXY, RangeA2_150mT)
	require.True(t, ok)
	assert.InDelta(t, 149.9268, mT, delta)

	mT, ok = ConvertRawMagneticFieldToMilliTesla(-2048, DataTypeXY, RangeA2_150mT)
	require.True(t, ok)
	assert.InDelta(t, -150.0, mT, delta)
}

func TestConvertRawAngleToDegrees(t *testing.T) {
	assert.InDelta(t, 354.5, ConvertRawAngleToDegrees(0x1628, DataTypeDefault32Bit), delta)
	assert.InDelta(t, 17.25, ConvertRawAngleToDegrees(0x0114, DataTypeDefault32Bit), delta)
	assert.InDelta(t, 0.0, ConvertRawAngleToDegrees(0, DataTypeDefault32Bit), delta)

	// 12-bit: 3 fractional bits
	assert.InDelta(t, 354.5, ConvertRawAngleToDegrees(0xB14, DataTypeAM), delta)
}

func TestConvertTemperatureThresholds(t *testing.T) {
	hi := []struct {
		code     int8
		expected float64
	}{
		{90, 116.529},
		{80, 73.859},
		{70, 31.189},
		{0x67, 172},
	}
	for _, tt := range hi {
		assert.InDelta(t, tt.expected, ConvertTemperatureHiThreshold(tt.code), delta, "hi code=%d", tt.code)
	}

	lo := []struct {
		code     int8
		expected float64
	}{
		{40, -95.67},
		{60, -10.33},
		{70, 32.34},
		{0x32, -53},
	}
	for _, tt := range lo {
		assert.InDelta(t, tt.expected, ConvertTemperatureLoThreshold(tt.code), delta, "lo code=%d", tt.code)
	}
}

func TestConvertMagneticFieldThreshold(t *testing.T) {
	tests := []struct {
		code     int8
		expected float64
	}{
		{127, 148.828125},
		{-128, -150},
		{60, 70.3125},
		{-50, -58.59375},
		{125, 146.484375},
	}
	for _, tt := range tests {
		mT, ok := ConvertMagneticFieldThreshold(tt.code, RangeA2_150mT)
		require.True(t, ok)
		assert.InDelta(t, tt.expected, mT, delta, "code=%d", tt.code)
	}

	_, ok := ConvertMagneticFieldThreshold(10, RangeNotSelected)
	assert.False(t, ok)
}

func TestUnitStrings(t *testing.T) {
	assert.Equal(t, "[73.24 mT]", FormatMagneticField(73.2421875))
	assert.Equal(t, "[-150.00 mT]", FormatMagneticField(-150))
	assert.Equal(t, "[25.00 Celsius]", FormatTemperature(25))
	assert.Equal(t, "[354.50 Degrees]", FormatAngle(354.5))
	assert.Equal(t, "", magneticFieldString(100, DataTypeDefault32Bit, RangeNotSelected))
}
