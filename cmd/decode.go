// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	decodeJSON bool
	decodeYAML bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode MOSI MISO",
	Short: "Decode a single transaction given as hex",
	Long: `Decode one chip-select window given as the hex bytes sent on MOSI and
received on MISO.

Bytes may be written with or without a 0x prefix and separated by spaces,
colons or underscores. Pass "-" for a side that was not captured. Anything
other than four bytes per side is reported as a frame length error.

Examples:
  tmagscope decode 0x8C00000C 0xC8447208
  tmagscope decode "0F 00 04 07" -
  tmagscope --data-type xy decode 0xC000000F 0x12345670 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Print the decoded record as JSON")
	decodeCmd.Flags().BoolVar(&decodeYAML, "yaml", false, "Print the decoded record as YAML")
	decodeCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// parseHexBytes parses a hex byte string such as "0x8C00000C" or "8c 00 00 0c"
func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "-" || s == "" {
		return nil, nil
	}

	s = strings.NewReplacer(" ", "", ":", "", "_", "", "0x", "", "0X", "").Replace(s)
	if len(s)%2 != 0 {
		s = "0" + s
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return data, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	mosi, err := parseHexBytes(args[0])
	if err != nil {
		return fmt.Errorf("MOSI: %w", err)
	}
	miso, err := parseHexBytes(args[1])
	if err != nil {
		return fmt.Errorf("MISO: %w", err)
	}

	cfg, _, err := decoderConfig(cmd)
	if err != nil {
		return err
	}

	now := time.Now()
	decoded := tmag5170.NewDecoder(cfg).Decode(tmag5170.Transaction{
		Start: now,
		End:   now,
		MOSI:  mosi,
		MISO:  miso,
	})

	switch {
	case decodeJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tmag5170.Fields(decoded))
	case decodeYAML:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(tmag5170.Fields(decoded))
	}

	fmt.Print(tmag5170.FormatTransaction(decoded))
	for _, v := range tmag5170.ValidateTransaction(decoded, cfg) {
		fmt.Printf("  ! %s\n", v.Message)
	}
	return nil
}
