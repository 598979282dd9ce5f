// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for warnings
}

// registerValue is the last value seen on the bus for one register
type registerValue struct {
	timestamp time.Time
	name      string
	direction string
	value     uint16
	decoding  string
}

// TUI model
type model struct {
	source        string
	dataType      tmag5170.DataType
	statsInterval int
	showAll       bool
	stats         *tmag5170.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	started       bool
	finished      bool
	width         int
	height        int
	quitting      bool

	registers    map[uint8]registerValue
	registerView table.Model
	lastChannels *tmag5170.ChannelPair
	lastSpecial  time.Time
}

// Messages
type tickMsg time.Time

func newRegisterTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Addr", Width: 5},
			{Title: "Register", Width: 18},
			{Title: "R/W", Width: 5},
			{Title: "Value", Width: 7},
			{Title: "Decoded", Width: 48},
		}),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t
}

func initialModel(source string, cfg tmag5170.Config, statsInterval int, showAll bool) model {
	return model{
		source:        source,
		dataType:      cfg.DataType,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         tmag5170.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		registers:     make(map[uint8]registerValue),
		registerView:  newRegisterTable(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// Rates stop moving once the source is exhausted
		if !m.finished {
			m.stats.CalculateRates()
		}
		return m, tickCmd()

	case sourceDoneMsg:
		m.finished = true
		if msg.err != nil {
			m.addLogEntry(time.Now(), fmt.Sprintf("SOURCE ERROR: %v", msg.err), true)
		} else {
			m.addLogEntry(time.Now(), "End of input", false)
		}

	case transactionMsg:
		t := msg.tx
		if !m.started {
			m.started = true
			m.addLogEntry(t.Start, "Bus traffic detected", false)
		}

		m.stats.Update(t, msg.validationErrors)
		m.trackValues(t)

		label := fmt.Sprintf("#%d %s %s", t.Index, t.Direction.String(), t.Register.Name)
		if len(msg.validationErrors) > 0 {
			for _, err := range msg.validationErrors {
				m.addLogEntry(t.Start, fmt.Sprintf("%s: %s", label, err.Message), true)
			}
		} else if m.showAll {
			m.addLogEntry(t.Start, fmt.Sprintf("%s (valid)", label), false)
		}
	}

	return m, nil
}

func (m *model) addLogEntry(timestamp time.Time, message string, isError bool) {
	entry := errorLogEntry{
		timestamp: timestamp,
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// trackValues records register values and channel results of clean transactions
func (m *model) trackValues(t *tmag5170.DecodedTransaction) {
	if !t.CRCOK() {
		return
	}

	if t.Channels != nil {
		channels := *t.Channels
		m.lastChannels = &channels
		m.lastSpecial = t.Start
	}

	if !t.Register.Known || !t.Register.HasValue {
		return
	}
	m.registers[t.Register.Address] = registerValue{
		timestamp: t.Start,
		name:      t.Register.Name,
		direction: t.Direction.String(),
		value:     t.Register.Value,
		decoding:  t.Register.Decoding,
	}

	addrs := make([]int, 0, len(m.registers))
	for addr := range m.registers {
		addrs = append(addrs, int(addr))
	}
	sort.Ints(addrs)

	rows := make([]table.Row, 0, len(addrs))
	for _, addr := range addrs {
		r := m.registers[uint8(addr)]
		rows = append(rows, table.Row{
			fmt.Sprintf("0x%02X", addr),
			r.name,
			r.direction,
			fmt.Sprintf("0x%04X", r.value),
			strings.TrimSpace(r.decoding),
		})
	}
	m.registerView.SetRows(rows)
}

func formatChannel(c tmag5170.Channel) string {
	if c.Unit == "" {
		return fmt.Sprintf("%d", c.Raw)
	}
	return fmt.Sprintf("%d %s", c.Raw, c.Unit)
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("TMAGSCOPE - ERROR DETECTION"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %s | Mode: %s | Press 'q' to quit",
		m.source, m.dataType.String(), func() string {
			if m.showAll {
				return "All frames"
			}
			return "Errors only"
		}())))
	s.WriteString("\n\n")

	// Source status
	switch {
	case m.finished:
		s.WriteString(headerStyle.Render("■ Input finished"))
	case !m.started:
		s.WriteString(warningStyle.Render("⏳ Waiting for bus traffic..."))
	default:
		s.WriteString(statsValueStyle.Render("✓ Receiving"))
	}
	s.WriteString("\n\n")

	// Statistics
	var validPercent, errorPercent float64
	if m.stats.TotalTransactions > 0 {
		validPercent = float64(m.stats.ValidTransactions) * 100.0 / float64(m.stats.TotalTransactions)
		errorPercent = float64(m.stats.ErrorCount()) * 100.0 / float64(m.stats.TotalTransactions)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalTransactions)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidTransactions, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ErrorCount(), errorPercent)),
	))

	if m.stats.CRCErrors > 0 || m.stats.LengthErrors > 0 || m.stats.UnknownRegisters > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("CRC:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.CRCErrors)),
			statsLabelStyle.Render("Length:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.LengthErrors)),
			statsLabelStyle.Render("Unknown Reg:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.UnknownRegisters)),
		))
	}

	if m.stats.DeviceFlags > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Device Flags:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.DeviceFlags)),
			headerStyle.Render("prev CRC"), m.stats.PrevCRCErrors,
			headerStyle.Render("config reset"), m.stats.ConfigResets,
			headerStyle.Render("alerts"), m.stats.Alerts,
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.TransactionRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Latest conversion results of 12-bit data frames
	if m.lastChannels != nil {
		s.WriteString(statsLabelStyle.Render("Latest Channels:"))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(fmt.Sprintf("%s %s   %s %s   %s",
			statsLabelStyle.Render("CH1:"), statsValueStyle.Render(formatChannel(m.lastChannels.Ch1)),
			statsLabelStyle.Render("CH2:"), statsValueStyle.Render(formatChannel(m.lastChannels.Ch2)),
			headerStyle.Render(m.lastSpecial.Format("15:04:05.000000")),
		)))
		s.WriteString("\n\n")
	}

	// Register values (only shown once a register was seen)
	if len(m.registers) > 0 {
		s.WriteString(statsLabelStyle.Render("Latest Registers:"))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(m.registerView.View()))
		s.WriteString("\n\n")
	}

	// Error log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 15 // Reserve space for header and stats
	if len(m.registers) > 0 {
		logHeight -= 12
	}
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
