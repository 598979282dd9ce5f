// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

var rawLogSummary bool

var rawLogCmd = &cobra.Command{
	Use:   "raw_log [capture file]",
	Short: "Display decoded transactions in human-readable format",
	Long: `Decode and display TMAG5170 SPI transactions as they arrive.

Each transaction shows its timestamp, both frames with their CRC status, the
access direction and register, the decoded register value and the optional
status fields. In 12-bit data modes the two channel values are shown instead.

Reads from a capture file (.csv or .tcap) when one is given, otherwise from
the serial or WebSocket connection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogSummary, "summary", false, "One line per transaction")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, "Raw Transaction Log", func(t *tmag5170.DecodedTransaction, _ tmag5170.Config) error {
		if rawLogSummary {
			fmt.Println(tmag5170.FormatSummaryLine(t))
		} else {
			fmt.Print(tmag5170.FormatTransaction(t))
		}
		return nil
	})
}
