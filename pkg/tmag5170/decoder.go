// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

// Decoder turns MOSI/MISO frame pairs into decoded transactions.
// It holds no state besides its configuration; the same pair always
// decodes to the same result.
type Decoder struct {
	config Config
}

// NewDecoder creates a decoder for the given configuration
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{config: cfg}
}

// Config returns the decoder configuration
func (d *Decoder) Config() Config {
	return d.config
}

// Decode decodes one captured transaction
func (d *Decoder) Decode(tx Transaction) *DecodedTransaction {
	t := d.DecodeFrames(NewFrame(tx.MOSI), NewFrame(tx.MISO))
	t.Start = tx.Start
	t.End = tx.End
	return t
}

// DecodeFrames decodes an already assembled frame pair
func (d *Decoder) DecodeFrames(mosi, miso Frame) *DecodedTransaction {
	t := &DecodedTransaction{
		DataType: d.config.DataType,
		MOSI:     mosi,
		MISO:     miso,
		MOSICRC:  mosi.CRC(),
		MISOCRC:  miso.CRC(),
	}

	if mosi.Valid() {
		if mosi.IsRead() {
			t.Direction = DirectionRead
		} else {
			t.Direction = DirectionWrite
		}
	}

	if d.config.CmdStatGroup {
		t.CmdStat = decodeCmdStat(mosi, miso)
	}

	if t.DataType.IsSpecial() {
		d.decodeSpecial(t)
	} else {
		d.decodeRegular(t)
	}
	return t
}

// decodeRegular handles DATA_TYPE=0h: address from MOSI, value from the
// driving side (MOSI on write, MISO on read)
func (d *Decoder) decodeRegular(t *DecodedTransaction) {
	if t.MOSI.Valid() {
		source := t.MOSI
		if t.Direction == DirectionRead {
			source = t.MISO
		}
		t.Register = d.registerAccess(t.MOSI.Address(), source)
	}

	if d.config.StatusGroup && t.MISO.Valid() {
		t.Status = decodeStatus(t.MISO.Value())
	}
}

// decodeSpecial handles the 12-bit data modes. Reads only report their
// direction, writes still carry a register access in MOSI.
func (d *Decoder) decodeSpecial(t *DecodedTransaction) {
	if t.Direction == DirectionWrite {
		t.Register = d.registerAccess(t.MOSI.Address(), t.MOSI)
	}

	if t.MISO.Valid() {
		pair := d.decodeChannels(t.MISO.Value())
		t.Channels = &pair
	}
}

func (d *Decoder) registerAccess(addr uint8, source Frame) RegisterAccess {
	access := RegisterAccess{
		Address:    addr,
		HasAddress: true,
		Name:       UnknownRegisterToken,
	}

	reg, err := LookupRegister(addr)
	if err == nil {
		access.Name = reg.Name
		access.Known = true
	}

	if source.Valid() {
		access.Value = source.Data()
		access.HasValue = true
		if reg != nil {
			access.Decoding = reg.Decode(&d.config, access.Value)
		}
	}
	return access
}

func decodeCmdStat(mosi, miso Frame) *CmdStatGroup {
	group := &CmdStatGroup{}
	if mosi.Valid() {
		v := mosi.Value()
		group.HasCommand = true
		group.Cmd0 = GetBit(v, CmdPosition)
		group.Cmd1 = GetBit(v, CmdPosition+1)
		group.Cmd2 = GetBit(v, CmdPosition+2)
		group.Cmd3 = GetBit(v, CmdPosition+3)
	}
	if mosi.Valid() && miso.Valid() {
		group.HasStatus = true
		group.ErrorStat = GetBit(mosi.Value(), ErrorStatBitPosition)
		group.Stat = uint8(MaskedValue(miso.Value(), StatPosition, StatMask))
	}
	return group
}

func decodeStatus(miso uint32) *StatusGroup {
	return &StatusGroup{
		PrevCRC:  GetBit(miso, StatPrevCRCBit),
		CfgReset: GetBit(miso, StatCfgResetBit),
		SysAlert: GetBit(miso, StatSysAlertBit),
		AFEAlert: GetBit(miso, StatAFEAlertBit),
		X:        GetBit(miso, StatXBit),
		Y:        GetBit(miso, StatYBit),
		Z:        GetBit(miso, StatZBit),
		T:        GetBit(miso, StatTBit),
	}
}

// ComposeChannels extracts the two 12-bit channel codes of a special data frame.
// Each channel is its high byte followed by its low nibble.
func ComposeChannels(miso uint32) (ch1, ch2 uint32) {
	ch1 = MaskedValue(miso, Ch1HighPosition, ChHighMask)<<4 | MaskedValue(miso, Ch1LowPosition, ChLowMask)
	ch2 = MaskedValue(miso, Ch2HighPosition, ChHighMask)<<4 | MaskedValue(miso, Ch2LowPosition, ChLowMask)
	return ch1, ch2
}

func (d *Decoder) decodeChannels(miso uint32) ChannelPair {
	ch1, ch2 := ComposeChannels(miso)

	switch d.config.DataType {
	case DataTypeXY:
		return ChannelPair{d.magneticChannel(ch1, d.config.XRange), d.magneticChannel(ch2, d.config.YRange)}
	case DataTypeXZ:
		return ChannelPair{d.magneticChannel(ch1, d.config.XRange), d.magneticChannel(ch2, d.config.ZRange)}
	case DataTypeZY:
		return ChannelPair{d.magneticChannel(ch1, d.config.ZRange), d.magneticChannel(ch2, d.config.YRange)}
	case DataTypeXT:
		return ChannelPair{d.magneticChannel(ch1, d.config.XRange), d.temperatureChannel(ch2)}
	case DataTypeYT:
		return ChannelPair{d.magneticChannel(ch1, d.config.YRange), d.temperatureChannel(ch2)}
	case DataTypeZT:
		return ChannelPair{d.magneticChannel(ch1, d.config.ZRange), d.temperatureChannel(ch2)}
	case DataTypeAM:
		return ChannelPair{d.angleChannel(ch1), Channel{Raw: int32(ch2)}}
	}
	return ChannelPair{Channel{Raw: int32(ch1)}, Channel{Raw: int32(ch2)}}
}

func (d *Decoder) magneticChannel(raw uint32, r BrRange) Channel {
	value, _ := SignExtend(raw, ChannelBits, 16)
	return Channel{Raw: value, Unit: magneticFieldString(value, d.config.DataType, r)}
}

func (d *Decoder) temperatureChannel(raw uint32) Channel {
	ch := Channel{Raw: int32(raw)}
	if d.config.TempAngleConversion {
		ch.Unit = FormatTemperature(ConvertRawTempToCelsius(ch.Raw, d.config.DataType))
	}
	return ch
}

func (d *Decoder) angleChannel(raw uint32) Channel {
	ch := Channel{Raw: int32(raw)}
	if d.config.TempAngleConversion {
		ch.Unit = FormatAngle(ConvertRawAngleToDegrees(raw, d.config.DataType))
	}
	return ch
}
