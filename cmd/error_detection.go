// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection [capture file]",
	Short: "Detect and analyze malformed frames and device errors",
	Long: `Track frame errors and device status flags with statistics.

This command validates each transaction and detects:
  - Length errors (a chip-select window without exactly 4 bytes per side)
  - CRC mismatches on MOSI or MISO
  - Accesses to unknown register addresses
  - Device status flags (previous-frame CRC error, config reset, alerts)
  - Statistics and trends (frame rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid frames too.

Transactions are validated as they arrive, with errors highlighted immediately
and periodic statistics summaries displayed at configurable intervals.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all transactions (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// transactionMsg is a decoded transaction together with its validation result
type transactionMsg struct {
	tx               *tmag5170.DecodedTransaction
	validationErrors []tmag5170.ValidationError
}

// sourceDoneMsg reports the end of the event source
type sourceDoneMsg struct {
	err error
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	if statsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be positive")
	}

	p, err := openPipeline(cmd, args)
	if err != nil {
		return err
	}
	defer p.Close()

	if useTUI {
		return runTUIMode(p)
	}
	return runTextMode(p)
}

// validate wraps a transaction with its validation errors
func (p *pipeline) validate(t *tmag5170.DecodedTransaction) transactionMsg {
	return transactionMsg{tx: t, validationErrors: tmag5170.ValidateTransaction(t, p.cfg)}
}

// printValidationErrors prints validation errors for a transaction
func printValidationErrors(t *tmag5170.DecodedTransaction, errors []tmag5170.ValidationError) {
	timestamp := t.Start.Format("15:04:05.000000")
	name := t.Register.Name
	if name == "" {
		name = "frame"
	}

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m #%d %s %s\n", timestamp, t.Index, t.Direction.String(), name)
	fmt.Printf("  MOSI: %s  MISO: %s\n", t.MOSI.String(), t.MISO.String())

	for i, err := range errors {
		switch err.Type {
		case tmag5170.AnomalyLengthError:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case tmag5170.AnomalyCRCError:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case tmag5170.AnomalyUnknownRegister:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		case tmag5170.AnomalyPrevCRCError, tmag5170.AnomalyConfigReset, tmag5170.AnomalyAlert:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			if status, ok := err.Details["status"].(uint8); ok {
				fmt.Printf("    status=0x%02X\n", status)
			}

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	if t.Status != nil {
		fmt.Printf("  %s\n", tmag5170.FormatStatus(t.Status))
	}

	fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(p *pipeline) error {
	m := initialModel(p.info, p.cfg, statsInterval, showAll)
	prog := tea.NewProgram(m)

	// Decoder goroutine
	go func() {
		err := p.run(func(t *tmag5170.DecodedTransaction) error {
			prog.Send(p.validate(t))
			return nil
		})
		prog.Send(sourceDoneMsg{err: err})
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(p *pipeline) error {
	p.banner("Error Detection Mode")
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All transactions\n\n")
	} else {
		fmt.Printf("Mode: Errors only\n\n")
	}

	stats := tmag5170.NewStatistics()

	// Statistics ticker
	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Decoded transactions arrive from the decoder goroutine
	results := make(chan transactionMsg, 64)
	var runErr error
	go func() {
		runErr = p.run(func(t *tmag5170.DecodedTransaction) error {
			results <- p.validate(t)
			return nil
		})
		close(results)
	}()

	for {
		select {
		case msg, ok := <-results:
			if !ok {
				// Source exhausted
				fmt.Println()
				fmt.Print(stats.String())
				return runErr
			}

			stats.Update(msg.tx, msg.validationErrors)

			if len(msg.validationErrors) > 0 {
				printValidationErrors(msg.tx, msg.validationErrors)
			} else if showAll {
				fmt.Print(tmag5170.FormatTransaction(msg.tx))
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
