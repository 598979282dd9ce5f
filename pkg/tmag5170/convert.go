// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import "fmt"

// ConvertRawTempToCelsius converts a TEMP_RESULT code (16-bit) or a 12-bit
// special-mode temperature channel to degrees Celsius
func ConvertRawTempToCelsius(raw int32, dataType DataType) float64 {
	if dataType == DataTypeDefault32Bit {
		return TempSensT0 + (float64(raw)-TempADCT0)/TempADCRes
	}
	return TempSensT0 + (16*(float64(raw)-TempADCT0/16.0))/TempADCRes
}

// ConvertRawMagneticFieldToMilliTesla converts a signed field code to mT.
// Returns false when no range is selected for the axis.
func ConvertRawMagneticFieldToMilliTesla(raw int32, dataType DataType, r BrRange) (float64, bool) {
	br, ok := r.MilliTesla()
	if !ok {
		return 0, false
	}
	fullScale := 65536.0
	if dataType != DataTypeDefault32Bit {
		fullScale = 4096.0
	}
	return float64(raw) * 2 * br / fullScale, true
}

// ConvertRawAngleToDegrees converts an ANGLE_RESULT code (16-bit, 4 fractional
// bits) or a 12-bit angle channel (3 fractional bits) to degrees
func ConvertRawAngleToDegrees(raw uint32, dataType DataType) float64 {
	if dataType == DataTypeDefault32Bit {
		return float64((raw>>4)&0x1FF) + float64(raw&0x0F)/16
	}
	return float64((raw>>3)&0x1FF) + float64(raw&0x07)/8
}

// ConvertMagneticFieldThreshold converts a signed threshold code to mT.
// Returns false when no range is selected for the axis.
func ConvertMagneticFieldThreshold(code int8, r BrRange) (float64, bool) {
	br, ok := r.MilliTesla()
	if !ok {
		return 0, false
	}
	return float64(code) * (br / MagThresholdDivisor), true
}

// ConvertTemperatureThreshold converts a threshold code relative to its reference point
func ConvertTemperatureThreshold(code int8, refCode int, refCelsius float64) float64 {
	return float64(int(code)-refCode)*TempThresholdLSB + refCelsius
}

// ConvertTemperatureHiThreshold converts T_HI_THRESHOLD to Celsius
func ConvertTemperatureHiThreshold(code int8) float64 {
	return ConvertTemperatureThreshold(code, TempHiThresholdRefCode, TempHiThresholdRefCelsius)
}

// ConvertTemperatureLoThreshold converts T_LO_THRESHOLD to Celsius
func ConvertTemperatureLoThreshold(code int8) float64 {
	return ConvertTemperatureThreshold(code, TempLoThresholdRefCode, TempLoThresholdRefCelsius)
}

// FormatMagneticField renders "[x.xx mT]"
func FormatMagneticField(mT float64) string {
	return fmt.Sprintf("[%.2f mT]", mT)
}

// FormatTemperature renders "[x.xx Celsius]"
func FormatTemperature(celsius float64) string {
	return fmt.Sprintf("[%.2f Celsius]", celsius)
}

// FormatAngle renders "[x.xx Degrees]"
func FormatAngle(degrees float64) string {
	return fmt.Sprintf("[%.2f Degrees]", degrees)
}

// magneticFieldString converts and formats, or returns "" when no range is selected
func magneticFieldString(raw int32, dataType DataType, r BrRange) string {
	mT, ok := ConvertRawMagneticFieldToMilliTesla(raw, dataType, r)
	if !ok {
		return ""
	}
	return FormatMagneticField(mT)
}

func magneticThresholdString(code int8, r BrRange) string {
	mT, ok := ConvertMagneticFieldThreshold(code, r)
	if !ok {
		return ""
	}
	return FormatMagneticField(mT)
}
