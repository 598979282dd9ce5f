// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	wsPingTimeout int
	wsPingCount   int
)

var wsPingCmd = &cobra.Command{
	Use:   "ws_ping",
	Short: "Test the WebSocket bridge with ping/pong round trips",
	Long: `Send WebSocket ping frames to the analyzer bridge and wait for the pongs.

This command tests bidirectional WebSocket communication with the bridge
without interpreting the analyzer stream. Event lines arriving in between
are read and discarded.

This is useful for verifying:
  - WebSocket connection is established
  - HTTP Basic authentication works
  - The bridge answers control frames
  - Round-trip latency of the link

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runWsPing,
}

func init() {
	rootCmd.AddCommand(wsPingCmd)
	wsPingCmd.Flags().IntVar(&wsPingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	wsPingCmd.Flags().IntVar(&wsPingCount, "count", 3, "Number of pings to send")
}

func runWsPing(cmd *cobra.Command, args []string) error {
	if wsURL == "" {
		return fmt.Errorf("ws_ping requires --url")
	}
	if wsPingCount <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	ws, ok := conn.(*WebSocketConnection)
	if !ok {
		fmt.Fprintf(os.Stderr, "Connection error: not a WebSocket connection\n")
		os.Exit(2)
	}

	fmt.Printf("tmagscope - WebSocket Ping Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds per ping\n", wsPingTimeout)
	fmt.Printf("Count: %d pings\n\n", wsPingCount)

	pongChan := make(chan string, 1)
	ws.OnPong(func(payload string) {
		select {
		case pongChan <- payload:
		default:
		}
	})

	// Control frames are handled by the reader
	errChan := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, ws)
		errChan <- err
	}()

	successCount := 0
	failCount := 0

pings:
	for i := 1; i <= wsPingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, wsPingCount)

		payload := fmt.Sprintf("tmagscope-%d", i)
		timeout := time.Duration(wsPingTimeout) * time.Second

		startTime := time.Now()
		if err := ws.Ping([]byte(payload), startTime.Add(timeout)); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		// Wait for the matching pong or timeout
		deadline := time.After(timeout)
	wait:
		for {
			select {
			case got := <-pongChan:
				if got != payload {
					continue
				}
				fmt.Printf("PONG from bridge, rtt=%v\n", time.Since(startTime).Round(time.Microsecond))
				successCount++
				break wait

			case err := <-errChan:
				// No more pongs can arrive
				fmt.Printf("READ FAILED: %v\n", err)
				failCount += wsPingCount - i + 1
				break pings

			case <-deadline:
				fmt.Printf("TIMEOUT (no response in %ds)\n", wsPingTimeout)
				failCount++
				break wait
			}
		}

		// Small delay between pings
		if i < wsPingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		wsPingCount, successCount, float64(failCount)/float64(wsPingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
