// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTransaction_Regular(t *testing.T) {
	cfg := DefaultConfig()
	d := decodeWords(cfg, 0x8C00000C, 0xC8447208)
	d.Index = 7
	d.Start = t0

	out := FormatTransaction(d)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[12:00:00.000000] #7 mosi=0x8C00000C (CRC_OK) miso=0xC8447208 (CRC_OK) READ TEMP_RESULT-0x0C", lines[0])
	assert.Equal(t, "  value=0x4472 [15-0] TEMP_RESULT: 17522 [25.00 Celsius]", lines[1])
	assert.Equal(t, "  status=0xC8 [PREV_CRC CFG_RESET X]", lines[2])
	assert.Equal(t, "  cmd=0x0 error_stat=0 stat=0x0", lines[3])
}

func TestFormatTransaction_CRCErrorAndLength(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDecoder(cfg).Decode(Transaction{
		MOSI: Uint32ToBytes(0x0F000406),
		MISO: []byte{0x00},
	})

	out := FormatTransaction(d)
	assert.Contains(t, out, "mosi=0x0F000406 (CRC_ERROR expected=0x7 got=0x6)")
	assert.Contains(t, out, "miso=Frame length error (-)")
	assert.Contains(t, out, "WRITE TEST_CONFIG-0x0F")
	assert.Contains(t, out, "value=0x0004")
}

func TestFormatTransaction_Special(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataType = DataTypeXY
	cfg.XRange = RangeA2_150mT

	d := decodeWords(cfg, EncodeFrame(Command{Read: true}), EncodeSpecialResponse(0x800, 0x7FF, 0))
	out := FormatTransaction(d)
	assert.Contains(t, out, "  XY: ch1=-2048 [-150.00 mT], ch2=2047\n")
	assert.NotContains(t, out, "status=")
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "status=0x00", FormatStatus(&StatusGroup{}))
	assert.Equal(t, "status=0x11 [AFE_ALRT T]", FormatStatus(&StatusGroup{AFEAlert: 1, T: 1}))
}

func TestFormatSummaryLine(t *testing.T) {
	d := decodeWords(DefaultConfig(), 0x8F000008, 0xC0400002)
	d.Index = 42

	line := FormatSummaryLine(d)
	assert.True(t, strings.HasPrefix(line, "FrameCnt:     42, mosi_f: 0x8F000008, crc_mosi:    CRC_OK"), line)
	assert.True(t, strings.HasSuffix(line, "read_write:   read, reg name: TEST_CONFIG"), line)
}

func TestFields_Regular(t *testing.T) {
	d := decodeWords(DefaultConfig(), 0x8C00000C, 0x0044720F)
	d.Index = 3

	f := Fields(d)
	assert.Equal(t, RecordRegular, f["kind"])
	assert.Equal(t, "", f["length_err_msg"])
	assert.Equal(t, "0x8C00000C", f["mosi_frame"])
	assert.Equal(t, "0xC", f["mosi_crc_calculated"])
	assert.Equal(t, CRCOKToken, f["crc_miso_correct"])
	assert.Equal(t, ReadToken, f["read_write"])
	assert.Equal(t, "0xC", f["register_address"])
	assert.Equal(t, "TEMP_RESULT", f["register_name"])
	assert.Equal(t, "0x4472", f["register_value"])
	assert.Equal(t, uint64(3), f["FrameCnt"])
	assert.Equal(t, "0x0", f["error_stat"])
	assert.Equal(t, "0x0", f["t_stat"])
	assert.NotContains(t, f, "ch1_value")
}

func TestFields_SpecialAndErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataType = DataTypeAM

	d := decodeWords(cfg, EncodeFrame(Command{Read: true}), EncodeSpecialResponse(0xB14, 0x800, 0))
	f := Fields(d)
	assert.Equal(t, RecordSpecial, f["kind"])
	assert.Equal(t, int32(0xB14), f["ch1_value"])
	assert.Equal(t, "[354.50 Degrees]", f["ch1_si_value_str"])
	assert.NotContains(t, f, "prev_crc_stat")

	d = NewDecoder(DefaultConfig()).Decode(Transaction{MOSI: []byte{0x8C}})
	f = Fields(d)
	assert.Equal(t, LengthErrorToken, f["length_err_msg"])
	assert.Equal(t, "", f["mosi_crc_calculated"])
	assert.Equal(t, "", f["register_address"])
	assert.Equal(t, "", f["cmd3"])
}
