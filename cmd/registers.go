// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var registersCmd = &cobra.Command{
	Use:   "registers [REGISTER [VALUE]]",
	Short: "Print the TMAG5170 register map",
	Long: `Print the register map with the bit fields of each register.

Given a register name or address, only that register is shown. Given a
16-bit value as well, the value is decoded with the current decoder options.

Examples:
  tmagscope registers
  tmagscope registers SYS_STATUS
  tmagscope --x-range a1-50 registers X_CH_RESULT 0x0800`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRegisters,
}

func init() {
	rootCmd.AddCommand(registersCmd)
}

func registerFields(reg *tmag5170.Register) string {
	labels := reg.FieldLabels()
	if labels == nil {
		return "(computed value)"
	}
	return strings.Join(labels, "\n")
}

func runRegisters(cmd *cobra.Command, args []string) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Addr", "Register", "Fields")

	if len(args) == 0 {
		for _, reg := range tmag5170.Registers() {
			t.Row(fmt.Sprintf("0x%02X", reg.Address), reg.Name, registerFields(&reg))
		}
		fmt.Println(t.Render())
		return nil
	}

	reg, err := tmag5170.LookupRegisterByName(args[0])
	if err != nil {
		return err
	}
	t.Row(fmt.Sprintf("0x%02X", reg.Address), reg.Name, registerFields(reg))
	fmt.Println(t.Render())

	if len(args) == 2 {
		value, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return fmt.Errorf("invalid register value %q: %w", args[1], err)
		}
		cfg, _, err := decoderConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Printf("%s = 0x%04X: %s\n", reg.Name, value, reg.Decode(&cfg, uint16(value)))
	}
	return nil
}
