// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var (
	discoveryTimeout int
	discoveryProbe   bool
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Find serial ports carrying an analyzer bridge",
	Long: `List serial ports and optionally probe them for SPI analyzer traffic.

Without --probe, every serial port is listed together with its USB identity.
With --probe, each port is opened at --baud and read until --timeout; a port
is reported as a bridge once a valid analyzer event line is received.

Examples:
  tmagscope discovery
  tmagscope discovery --probe --baud 921600

Exit codes:
  0 - Discovery successful (at least one port, or bridge with --probe)
  1 - Discovery failed (no ports or no bridge found)
  2 - Enumeration error`,
	Args: cobra.NoArgs,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.Flags().IntVar(&discoveryTimeout, "timeout", 3, "Probe timeout in seconds per port")
	discoveryCmd.Flags().BoolVar(&discoveryProbe, "probe", false, "Open each port and wait for analyzer events")
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("tmagscope - Port Discovery\n")
	if discoveryProbe {
		fmt.Printf("Probe: %d baud, %d seconds per port\n", baudRate, discoveryTimeout)
	}
	fmt.Println()

	found := 0
	for _, p := range ports {
		fmt.Printf("%s\n", p.Name)
		if p.IsUSB {
			fmt.Printf("  USB: %s:%s", p.VID, p.PID)
			if p.SerialNumber != "" {
				fmt.Printf(" serial=%s", p.SerialNumber)
			}
			if p.Product != "" {
				fmt.Printf(" (%s)", p.Product)
			}
			fmt.Println()
		}

		if !discoveryProbe {
			found++
			continue
		}

		lines, err := probePort(p.Name)
		switch {
		case err != nil:
			fmt.Printf("  Probe: failed (%v)\n", err)
		case lines > 0:
			fmt.Printf("  Probe: analyzer bridge (%d event lines)\n", lines)
			found++
		default:
			fmt.Printf("  Probe: no analyzer events\n")
		}
	}

	// Summary
	fmt.Printf("\n--- Discovery summary ---\n")
	if discoveryProbe {
		fmt.Printf("Bridges found: %d of %d ports\n", found, len(ports))
	} else {
		fmt.Printf("Ports found: %d\n", found)
	}

	if found == 0 {
		os.Exit(1)
	}
	return nil
}

// probePort counts analyzer event lines received on a port before the timeout
func probePort(name string) (int, error) {
	conn, err := OpenSerialConnection(name, baudRate)
	if err != nil {
		return 0, err
	}
	closePort := sync.OnceValue(conn.Close)
	defer closePort()

	lineChan := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lineChan)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case lineChan <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	lines := 0
	deadline := time.After(time.Duration(discoveryTimeout) * time.Second)
	for {
		select {
		case line, ok := <-lineChan:
			if !ok {
				return lines, nil
			}
			if isEventLine(line) {
				lines++
			}
		case <-deadline:
			// Closing the port ends the scanner goroutine
			closePort()
			return lines, nil
		}
	}
}

// isEventLine reports whether a CSV line carries an enable, result or disable event
func isEventLine(line string) bool {
	for _, field := range strings.Split(line, ",") {
		field = strings.Trim(strings.TrimSpace(field), `"`)
		if _, err := tmag5170.ParseEventType(strings.ToLower(field)); err == nil {
			return true
		}
	}
	return false
}
