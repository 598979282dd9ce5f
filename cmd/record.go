// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/Thermoquad/tmagscope/pkg/capture"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

var recordFrom string

var recordCmd = &cobra.Command{
	Use:   "record FILE",
	Short: "Record bus events into a capture file",
	Long: `Record SPI analyzer events into a tmagscope capture file (.tcap).

Events are read from the serial or WebSocket connection until Ctrl+C, or
converted from a Logic 2 CSV export given with --from. Each recording is
stamped with a new session ID so several sessions can share one file; use
--session with the other commands to replay a single one.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVar(&recordFrom, "from", "", "Convert a CSV export instead of reading the connection")
}

// capturePath adds the capture extension when the name has none
func capturePath(path string) string {
	if filepath.Ext(path) == "" {
		return path + capture.CaptureExtension
	}
	return path
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := capturePath(args[0])

	var sourceArgs []string
	if recordFrom != "" {
		sourceArgs = []string{recordFrom}
	}
	src, closer, info, err := openEventSource(sourceArgs)
	if err != nil {
		return err
	}
	closeSource := sync.OnceValue(closer.Close)
	defer closeSource()

	w, err := capture.NewFileWriter(path, capture.NewSessionID())
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", path, err)
	}
	defer w.Close()

	fmt.Printf("tmagscope - Record\n")
	fmt.Printf("Source: %s\n", info)
	fmt.Printf("Capture: %s\n", path)
	fmt.Printf("Session: %s\n", w.SessionID())
	if recordFrom == "" {
		fmt.Printf("Press Ctrl+C to stop\n")
	}
	fmt.Println()

	// Closing the source unblocks a pending read
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		closeSource()
	}()

	bus := &busSource{src: src}
	var results uint64
	for {
		ev, err := bus.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		if err := w.Write(ev); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if ev.Type == tmag5170.EventResult {
			results++
			if recordFrom == "" && results%1000 == 0 {
				fmt.Printf("\r%d frames recorded", results)
			}
		}
	}

	if recordFrom == "" && results >= 1000 {
		fmt.Println()
	}
	fmt.Printf("Recorded %d events (%d frames) to %s\n", w.Count(), results, path)
	return nil
}
