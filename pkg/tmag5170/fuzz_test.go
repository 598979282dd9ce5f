// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tmag5170

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, or default
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomCommand(rng *rand.Rand) Command {
	return Command{
		Read:    rng.Intn(2) == 1,
		Address: uint8(rng.Intn(RegisterCount)),
		Data:    uint16(rng.Intn(0x10000)),
		Cmd:     uint8(rng.Intn(0x10)),
	}
}

// TestFuzzCommandRoundTrip encodes random commands and checks the decoder
// reports the same direction, register and value
func TestFuzzCommandRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()
	dec := NewDecoder(DefaultConfig())

	for i := 0; i < rounds; i++ {
		cmd := randomCommand(rng)
		respData := uint16(rng.Intn(0x10000))
		tx := Transaction{
			MOSI: Uint32ToBytes(EncodeFrame(cmd)),
			MISO: Uint32ToBytes(EncodeResponse(uint8(rng.Intn(0x100)), respData, uint8(rng.Intn(0x10)))),
		}

		d := dec.Decode(tx)
		if !d.CRCOK() {
			t.Fatalf("round %d: encoded frames failed CRC: %s / %s", i, d.MOSI, d.MISO)
		}
		if d.MOSI.Address() != cmd.Address {
			t.Fatalf("round %d: address 0x%02X, expected 0x%02X", i, d.MOSI.Address(), cmd.Address)
		}
		if d.Register.Name != RegisterName(cmd.Address) {
			t.Fatalf("round %d: name %q, expected %q", i, d.Register.Name, RegisterName(cmd.Address))
		}

		expected := cmd.Data
		if cmd.Read {
			expected = respData
			if d.Direction != DirectionRead {
				t.Fatalf("round %d: expected read", i)
			}
		} else if d.Direction != DirectionWrite {
			t.Fatalf("round %d: expected write", i)
		}
		if d.Register.Value != expected {
			t.Fatalf("round %d: value 0x%04X, expected 0x%04X", i, d.Register.Value, expected)
		}
		if d.CmdStat.Command() != cmd.Cmd {
			t.Fatalf("round %d: cmd 0x%X, expected 0x%X", i, d.CmdStat.Command(), cmd.Cmd)
		}
	}
}

// TestFuzzSingleBitFlip checks that any single flipped bit is caught by the CRC
func TestFuzzSingleBitFlip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		frame := EncodeFrame(randomCommand(rng))
		bit := uint(rng.Intn(32))
		corrupted := frame ^ (1 << bit)

		if r := CheckCRC(corrupted); r.Status != CRCStatusError {
			t.Fatalf("round %d: flipping bit %d of 0x%08X was not detected", i, bit, frame)
		}
	}
}

// TestFuzzSpecialChannelsRoundTrip checks channel extraction against random codes
func TestFuzzSpecialChannelsRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		c1 := uint16(rng.Intn(0x1000))
		c2 := uint16(rng.Intn(0x1000))
		frame := EncodeSpecialResponse(c1, c2, uint8(rng.Intn(0x10)))

		if CheckCRC(frame).Status != CRCStatusOK {
			t.Fatalf("round %d: special frame 0x%08X failed CRC", i, frame)
		}
		ch1, ch2 := ComposeChannels(frame)
		if ch1 != uint32(c1) || ch2 != uint32(c2) {
			t.Fatalf("round %d: got 0x%03X/0x%03X, expected 0x%03X/0x%03X", i, ch1, ch2, c1, c2)
		}
	}
}

// TestFuzzRandomBytes feeds arbitrary byte slices through the decoder; nothing may panic
func TestFuzzRandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for _, dt := range []DataType{DataTypeDefault32Bit, DataTypeXY, DataTypeXT, DataTypeAM} {
		cfg := DefaultConfig()
		cfg.DataType = dt
		cfg.XRange = RangeA2_150mT
		dec := NewDecoder(cfg)

		for i := 0; i < rounds; i++ {
			mosi := make([]byte, rng.Intn(7))
			miso := make([]byte, rng.Intn(7))
			rng.Read(mosi)
			rng.Read(miso)

			d := dec.Decode(Transaction{MOSI: mosi, MISO: miso})
			if d.LengthError() != (len(mosi) != FrameByteSize || len(miso) != FrameByteSize) {
				t.Fatalf("round %d: length error flag wrong for %d/%d bytes", i, len(mosi), len(miso))
			}
			_ = FormatTransaction(d)
			_ = Fields(d)
		}
	}
}
