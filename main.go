// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// tmagscope - TMAG5170 SPI Protocol Analyzer
//
// A CLI tool for decoding TMAG5170 3-axis Hall sensor SPI transactions
// in human-readable format.

package main

import (
	"os"

	"github.com/Thermoquad/tmagscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
