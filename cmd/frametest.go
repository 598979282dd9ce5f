// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

var (
	frameTestTimeout int
)

// errFrameFound stops the decoder once a valid frame pair was seen
var errFrameFound = errors.New("frame found")

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid TMAG5170 frame pair",
	Long: `Wait for a valid TMAG5170 transaction on the connection until timeout.

This command connects to a serial port or WebSocket bridge and waits for a
chip-select window carrying a complete MOSI and MISO frame, both passing the
CRC check. Incomplete windows and CRC failures are counted and ignored.

Exit codes:
  0 - Frame pair received before timeout
  1 - Timeout reached without receiving a valid frame pair
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame pair")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	asm, _, err := newAssembler(cmd)
	if err != nil {
		return err
	}

	// Open connection (serial or WebSocket)
	src, closer, connInfo, err := openEventSource(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	fmt.Printf("tmagscope - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid frame pair...\n\n")

	p := &pipeline{bus: &busSource{src: src}, asm: asm}

	// Channel for frame reception
	frameChan := make(chan *tmag5170.DecodedTransaction, 1)
	errChan := make(chan error, 1)

	// Decoder goroutine
	go func() {
		rejected := 0
		err := p.run(func(t *tmag5170.DecodedTransaction) error {
			if !t.CRCOK() {
				rejected++
				return nil
			}
			if rejected > 0 {
				fmt.Printf("(skipped %d invalid transactions)\n", rejected)
			}
			frameChan <- t
			return errFrameFound
		})
		if err != nil && !errors.Is(err, errFrameFound) {
			errChan <- err
			return
		}
		if err == nil {
			errChan <- fmt.Errorf("connection closed")
		}
	}()

	// Wait for frame or timeout
	select {
	case t := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame pair\n")
		fmt.Printf("  MOSI: %s\n", t.MOSI.String())
		fmt.Printf("  MISO: %s\n", t.MISO.String())
		if t.Direction != tmag5170.DirectionUnknown {
			fmt.Printf("  Access: %s %s\n", t.Direction.String(), t.Register.Name)
		}
		if t.Status != nil {
			fmt.Printf("  %s\n", tmag5170.FormatStatus(t.Status))
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(frameTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame pair received within %d seconds\n", frameTestTimeout)
		os.Exit(1)
	}

	return nil
}
