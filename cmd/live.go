// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/tmagscope/internal/config"
	"github.com/Thermoquad/tmagscope/pkg/capture"
	"github.com/Thermoquad/tmagscope/pkg/spibus"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

var (
	liveDevice    string
	liveSpeedHz   int64
	liveInterval  int
	liveRegisters []string
	liveCycles    int
	liveCmdBits   uint8
	liveRecord    string
	liveSummary   bool
)

var liveCommand = &cobra.Command{
	Use:   "live",
	Short: "Poll a TMAG5170 over Linux spidev and decode the exchange",
	Long: `Read registers of a TMAG5170 connected to a Linux spidev bus.

Each polling cycle issues one read request per selected register, with a
valid CRC, and decodes the full-duplex exchange exactly like a captured
transaction. Cycles repeat every --interval milliseconds until Ctrl+C or
until --cycles passes have completed.

The exchanged frames can be saved to a capture file with --record for later
replay with raw_log or error_detection.

Examples:
  tmagscope live --device /dev/spidev0.0 --registers TEMP_RESULT,X_CH_RESULT
  tmagscope live --cycles 1 --registers DEVICE_CONFIG,SENSOR_CONFIG,SYSTEM_CONFIG`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCommand)
	liveCommand.Flags().StringVar(&liveDevice, "device", config.DefaultSPIDevice, "spidev device")
	liveCommand.Flags().Int64Var(&liveSpeedHz, "speed", config.DefaultSPISpeedHz, "SPI clock in Hz")
	liveCommand.Flags().IntVar(&liveInterval, "interval", config.DefaultIntervalMs, "Delay between polling cycles (milliseconds)")
	liveCommand.Flags().StringSliceVar(&liveRegisters, "registers", config.DefaultRegisters, "Registers to read, by name or address")
	liveCommand.Flags().IntVar(&liveCycles, "cycles", 0, "Stop after this many polling cycles (0 = run until interrupted)")
	liveCommand.Flags().Uint8Var(&liveCmdBits, "cmd", 0, "CMD bits sent with every request (1 = start conversion)")
	liveCommand.Flags().StringVar(&liveRecord, "record", "", "Also write the exchanged frames to a capture file")
	liveCommand.Flags().BoolVar(&liveSummary, "summary", false, "One line per transaction")
}

// spiSettings merges the configuration file with explicitly set flags
func spiSettings(cmd *cobra.Command) config.SPIConfig {
	s := config.SPIConfig{
		Device:     liveDevice,
		SpeedHz:    liveSpeedHz,
		IntervalMs: liveInterval,
		Registers:  liveRegisters,
	}
	if fileConfig == nil {
		return s
	}

	flags := cmd.Flags()
	if !flags.Changed("device") {
		s.Device = fileConfig.SPI.Device
	}
	if !flags.Changed("speed") {
		s.SpeedHz = fileConfig.SPI.SpeedHz
	}
	if !flags.Changed("interval") {
		s.IntervalMs = fileConfig.SPI.IntervalMs
	}
	if !flags.Changed("registers") {
		s.Registers = fileConfig.SPI.Registers
	}
	return s
}

// registerAddresses resolves register names or addresses
func registerAddresses(names []string) ([]uint8, error) {
	addrs := make([]uint8, 0, len(names))
	for _, name := range names {
		reg, err := tmag5170.LookupRegisterByName(name)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, reg.Address)
	}
	return addrs, nil
}

// recordingSource copies every event it yields to a capture file
type recordingSource struct {
	src capture.Source
	w   *capture.FileWriter
}

func (r *recordingSource) Next() (capture.Event, error) {
	ev, err := r.src.Next()
	if err != nil {
		return ev, err
	}
	return ev, r.w.Write(ev)
}

func runLive(cmd *cobra.Command, args []string) error {
	settings := spiSettings(cmd)
	if settings.SpeedHz <= 0 || settings.SpeedHz > config.MaxSPISpeedHz {
		return fmt.Errorf("--speed must be between 1 and %d Hz", config.MaxSPISpeedHz)
	}
	if settings.IntervalMs < 0 {
		return fmt.Errorf("--interval must not be negative")
	}

	addrs, err := registerAddresses(settings.Registers)
	if err != nil {
		return err
	}

	asm, cfg, err := newAssembler(cmd)
	if err != nil {
		return err
	}

	dev, err := spibus.Open(settings.Device, settings.SpeedHz)
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller, err := spibus.NewPoller(ctx, dev, addrs, liveCmdBits,
		time.Duration(settings.IntervalMs)*time.Millisecond, liveCycles)
	if err != nil {
		return err
	}

	var src capture.Source = poller
	if liveRecord != "" {
		path := capturePath(liveRecord)
		w, err := capture.NewFileWriter(path, capture.NewSessionID())
		if err != nil {
			return fmt.Errorf("failed to open capture file %s: %w", path, err)
		}
		defer w.Close()
		src = &recordingSource{src: poller, w: w}
		fmt.Printf("Recording to %s (session %s)\n", path, w.SessionID())
	}

	fmt.Printf("tmagscope - Live\n")
	fmt.Printf("Source: %s\n", dev.String())
	fmt.Printf("Registers: %s\n", strings.Join(settings.Registers, ", "))
	fmt.Printf("Data type: %s\n", cfg.DataType.Description())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	p := &pipeline{bus: &busSource{src: src}, asm: asm, cfg: cfg}
	return p.run(func(t *tmag5170.DecodedTransaction) error {
		if liveSummary {
			fmt.Println(tmag5170.FormatSummaryLine(t))
		} else {
			fmt.Print(tmag5170.FormatTransaction(t))
		}
		for _, v := range tmag5170.ValidateTransaction(t, cfg) {
			fmt.Printf("  ! %s\n", v.Message)
		}
		return nil
	})
}
