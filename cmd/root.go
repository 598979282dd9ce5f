// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Thermoquad/tmagscope/internal/config"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	fileConfig    *config.Config
	sessionFilter string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Decoder flags
	dataTypeFlag   string
	xRangeFlag     string
	yRangeFlag     string
	zRangeFlag     string
	tempAngleConv  bool
	crcCheck       bool
	splitFrames    bool
	cmdStatGroup   bool
	statusGroup    bool
	verboseLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "tmagscope",
	Short: "TMAG5170 SPI Bus Analyzer",
	Long: `tmagscope - A CLI tool for decoding TMAG5170 3-axis Hall sensor SPI traffic.

Frames are read from Saleae Logic 2 SPI exports (.csv), tmagscope capture
files (.tcap), a serial or WebSocket bridge streaming analyzer events, or
polled directly from a sensor on a Linux spidev bus.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the TMAGSCOPE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Decoder options may also be set in a YAML file given with --config; flags
that are set explicitly take precedence.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&sessionFilter, "session", "", "Only replay events of this capture session (.tcap files)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", config.DefaultBaud, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Decoder flags
	rootCmd.PersistentFlags().StringVar(&dataTypeFlag, "data-type", "default", "SYSTEM_CONFIG DATA_TYPE: default, xy, xz, zy, xt, yt, zt, am")
	rootCmd.PersistentFlags().StringVar(&xRangeFlag, "x-range", "none", "X axis range (a1-25, a1-50, a1-100, a2-75, a2-150, a2-300)")
	rootCmd.PersistentFlags().StringVar(&yRangeFlag, "y-range", "none", "Y axis range")
	rootCmd.PersistentFlags().StringVar(&zRangeFlag, "z-range", "none", "Z axis range")
	rootCmd.PersistentFlags().BoolVar(&tempAngleConv, "temp-angle-conv", true, "Convert temperature and angle values")
	rootCmd.PersistentFlags().BoolVar(&crcCheck, "crc-check", true, "Report CRC mismatches as errors")
	rootCmd.PersistentFlags().BoolVar(&splitFrames, "split-frames", false, "Split back-to-back frames without chip-select toggling")
	rootCmd.PersistentFlags().BoolVar(&cmdStatGroup, "cmd-stat", true, "Decode the CMD/STAT nibble")
	rootCmd.PersistentFlags().BoolVar(&statusGroup, "stat8", true, "Decode the 8-bit status byte")
	rootCmd.PersistentFlags().BoolVarP(&verboseLogging, "verbose", "v", false, "Log bus events to stderr")
}

// setup loads the configuration file and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verboseLogging {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if configPath == "" {
		return nil
	}
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("config %s: %w", configPath, err)
	}
	fileConfig = cfg

	// Connection settings from the file fill in flags left unset
	flags := cmd.Flags()
	if !flags.Changed("port") && !flags.Changed("url") {
		portName = cfg.Connection.Port
		wsURL = cfg.Connection.URL
	}
	if !flags.Changed("baud") && cfg.Connection.Baud != 0 {
		baudRate = cfg.Connection.Baud
	}
	if !flags.Changed("username") && cfg.Connection.Username != "" {
		wsUsername = cfg.Connection.Username
	}
	if !flags.Changed("no-ssl-verify") {
		wsNoSSLVerify = cfg.Connection.Insecure
	}
	return nil
}

// decoderConfig merges the configuration file with explicitly set flags
func decoderConfig(cmd *cobra.Command) (tmag5170.Config, bool, error) {
	cfg := tmag5170.DefaultConfig()
	split := splitFrames
	if fileConfig != nil {
		var err error
		if cfg, err = fileConfig.Decoder.ToDecoder(); err != nil {
			return cfg, false, err
		}
		split = fileConfig.Decoder.SplitFrames
	}

	flags := cmd.Flags()
	if fileConfig == nil || flags.Changed("data-type") {
		dt, err := tmag5170.ParseDataType(dataTypeFlag)
		if err != nil {
			return cfg, false, err
		}
		cfg.DataType = dt
	}

	ranges := []struct {
		flag  string
		value string
		dst   *tmag5170.BrRange
	}{
		{"x-range", xRangeFlag, &cfg.XRange},
		{"y-range", yRangeFlag, &cfg.YRange},
		{"z-range", zRangeFlag, &cfg.ZRange},
	}
	for _, r := range ranges {
		if fileConfig != nil && !flags.Changed(r.flag) {
			continue
		}
		br, err := tmag5170.ParseBrRange(r.value)
		if err != nil {
			return cfg, false, fmt.Errorf("--%s: %w", r.flag, err)
		}
		*r.dst = br
	}

	bools := []struct {
		flag  string
		value bool
		dst   *bool
	}{
		{"temp-angle-conv", tempAngleConv, &cfg.TempAngleConversion},
		{"crc-check", crcCheck, &cfg.CRCCheck},
		{"cmd-stat", cmdStatGroup, &cfg.CmdStatGroup},
		{"stat8", statusGroup, &cfg.StatusGroup},
		{"split-frames", splitFrames, &split},
	}
	for _, b := range bools {
		if fileConfig == nil || flags.Changed(b.flag) {
			*b.dst = b.value
		}
	}

	return cfg, split, nil
}

// newAssembler builds the decoder pipeline for a command
func newAssembler(cmd *cobra.Command) (*tmag5170.Assembler, tmag5170.Config, error) {
	cfg, split, err := decoderConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	slog.Debug("decoder configured",
		"data_type", cfg.DataType.String(),
		"x_range", cfg.XRange.String(),
		"y_range", cfg.YRange.String(),
		"z_range", cfg.ZRange.String(),
		"split_frames", split)
	return tmag5170.NewAssembler(tmag5170.NewDecoder(cfg), split), cfg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
