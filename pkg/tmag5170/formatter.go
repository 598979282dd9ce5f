// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"fmt"
	"strings"
)

// Record kinds
const (
	RecordRegular = "tmag5170_regular"
	RecordSpecial = "tmag5170_special"
)

// RecordKind returns the output record kind of a transaction
func RecordKind(t *DecodedTransaction) string {
	if t.Special() {
		return RecordSpecial
	}
	return RecordRegular
}

// FormatTransaction formats a decoded transaction into a human-readable string
func FormatTransaction(t *DecodedTransaction) string {
	var b strings.Builder

	timestamp := t.Start.Format("15:04:05.000000")
	fmt.Fprintf(&b, "[%s] #%d mosi=%s (%s) miso=%s (%s)",
		timestamp, t.Index,
		t.MOSI.String(), formatCRCStatus(t.MOSICRC),
		t.MISO.String(), formatCRCStatus(t.MISOCRC))
	if t.Direction != DirectionUnknown {
		fmt.Fprintf(&b, " %s", strings.ToUpper(t.Direction.String()))
	}
	if t.Register.HasAddress {
		fmt.Fprintf(&b, " %s-%s", t.Register.Name, FormatHex(uint32(t.Register.Address), 2))
	}
	b.WriteString("\n")

	if t.Register.HasValue {
		fmt.Fprintf(&b, "  value=%s", FormatHex(uint32(t.Register.Value), RegisterValueHexDigit))
		if t.Register.Decoding != "" {
			fmt.Fprintf(&b, " %s", t.Register.Decoding)
		}
		b.WriteString("\n")
	}

	if t.Channels != nil {
		fmt.Fprintf(&b, "  %s: ch1=%s, ch2=%s\n",
			strings.ToUpper(t.DataType.String()),
			withUnit(fmt.Sprint(t.Channels.Ch1.Raw), t.Channels.Ch1.Unit),
			withUnit(fmt.Sprint(t.Channels.Ch2.Raw), t.Channels.Ch2.Unit))
	}

	if t.Status != nil {
		b.WriteString("  " + FormatStatus(t.Status) + "\n")
	}

	if t.CmdStat != nil && t.CmdStat.HasCommand {
		fmt.Fprintf(&b, "  cmd=0x%X", t.CmdStat.Command())
		if t.CmdStat.HasStatus {
			fmt.Fprintf(&b, " error_stat=%d stat=0x%X", t.CmdStat.ErrorStat, t.CmdStat.Stat)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatCRCStatus(r CRCResult) string {
	switch r.Status {
	case CRCStatusOK:
		return CRCOKToken
	case CRCStatusError:
		return fmt.Sprintf("%s expected=0x%X got=0x%X", CRCErrorToken, r.Calculated, r.FromBus)
	default:
		return "-"
	}
}

// FormatStatus renders the set flags of the status byte
func FormatStatus(s *StatusGroup) string {
	flags := []struct {
		name string
		set  uint8
	}{
		{"PREV_CRC", s.PrevCRC},
		{"CFG_RESET", s.CfgReset},
		{"SYS_ALRT", s.SysAlert},
		{"AFE_ALRT", s.AFEAlert},
		{"X", s.X},
		{"Y", s.Y},
		{"Z", s.Z},
		{"T", s.T},
	}
	set := []string{}
	for _, f := range flags {
		if f.set != 0 {
			set = append(set, f.name)
		}
	}
	if len(set) == 0 {
		return fmt.Sprintf("status=0x%02X", s.Byte())
	}
	return fmt.Sprintf("status=0x%02X [%s]", s.Byte(), strings.Join(set, " "))
}

// FormatSummaryLine renders a fixed-width one-line summary
func FormatSummaryLine(t *DecodedTransaction) string {
	crcWidth := len(CRCErrorToken)
	return fmt.Sprintf("FrameCnt: %6d, mosi_f: %10s, crc_mosi: %*s, miso_f: %10s, crc_miso: %*s, read_write: %6s, reg name: %s",
		t.Index,
		t.MOSI.String(), crcWidth, t.MOSICRC.Status.String(),
		t.MISO.String(), crcWidth, t.MISOCRC.Status.String(),
		t.Direction.String(), t.Register.Name)
}

// hexOrEmpty renders a hex field or "" when the value is absent
func hexOrEmpty(ok bool, v uint32, digits int) string {
	if !ok {
		return ""
	}
	return FormatHex(v, digits)
}

// Fields returns the flat output record of a transaction, keyed by the
// field names of the regular and special record templates
func Fields(t *DecodedTransaction) map[string]any {
	lengthErr := ""
	if t.LengthError() {
		lengthErr = LengthErrorToken
	}
	mosiCRC := t.MOSICRC.Status != CRCStatusNone
	misoCRC := t.MISOCRC.Status != CRCStatusNone

	f := map[string]any{
		"kind":                RecordKind(t),
		"length_err_msg":      lengthErr,
		"mosi_frame":          t.MOSI.String(),
		"mosi_crc_calculated": hexOrEmpty(mosiCRC, uint32(t.MOSICRC.Calculated), 0),
		"mosi_crc_from_bus":   hexOrEmpty(mosiCRC, uint32(t.MOSICRC.FromBus), 0),
		"crc_mosi_correct":    t.MOSICRC.Status.String(),
		"miso_frame":          t.MISO.String(),
		"miso_crc_calculated": hexOrEmpty(misoCRC, uint32(t.MISOCRC.Calculated), 0),
		"miso_crc_from_bus":   hexOrEmpty(misoCRC, uint32(t.MISOCRC.FromBus), 0),
		"crc_miso_correct":    t.MISOCRC.Status.String(),
		"read_write":          t.Direction.String(),
		"register_address":    hexOrEmpty(t.Register.HasAddress, uint32(t.Register.Address), 0),
		"register_name":       t.Register.Name,
		"register_value":      hexOrEmpty(t.Register.HasValue, uint32(t.Register.Value), RegisterValueHexDigit),
		"register_decoding":   t.Register.Decoding,
		"FrameCnt":            t.Index,
	}

	if t.CmdStat != nil {
		c := t.CmdStat
		f["cmd3"] = hexOrEmpty(c.HasCommand, uint32(c.Cmd3), 0)
		f["cmd2"] = hexOrEmpty(c.HasCommand, uint32(c.Cmd2), 0)
		f["cmd1"] = hexOrEmpty(c.HasCommand, uint32(c.Cmd1), 0)
		f["cmd0"] = hexOrEmpty(c.HasCommand, uint32(c.Cmd0), 0)
		f["error_stat"] = hexOrEmpty(c.HasStatus, uint32(c.ErrorStat), 0)
		f["stat_2_0"] = hexOrEmpty(c.HasStatus, uint32(c.Stat), 0)
	}

	if t.Special() {
		if t.Channels != nil {
			f["ch1_value"] = t.Channels.Ch1.Raw
			f["ch1_si_value_str"] = t.Channels.Ch1.Unit
			f["ch2_value"] = t.Channels.Ch2.Raw
			f["ch2_si_value_str"] = t.Channels.Ch2.Unit
		}
		return f
	}

	if t.Status != nil {
		s := t.Status
		f["prev_crc_stat"] = FormatHex(uint32(s.PrevCRC), 0)
		f["cfg_reset_stat"] = FormatHex(uint32(s.CfgReset), 0)
		f["sys_alrt_status1_stat"] = FormatHex(uint32(s.SysAlert), 0)
		f["afe_alrt_status0_stat"] = FormatHex(uint32(s.AFEAlert), 0)
		f["x_stat"] = FormatHex(uint32(s.X), 0)
		f["y_stat"] = FormatHex(uint32(s.Y), 0)
		f["z_stat"] = FormatHex(uint32(s.Z), 0)
		f["t_stat"] = FormatHex(uint32(s.T), 0)
	}
	return f
}
