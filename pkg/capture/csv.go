// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

// Default Logic 2 SPI export column order
var defaultColumns = []string{"name", "type", "start_time", "duration", "mosi", "miso"}

// ErrBadRecord is returned for CSV rows that cannot be parsed
var ErrBadRecord = errors.New("malformed capture record")

// CSVReader reads a Saleae Logic 2 SPI analyzer table export
type CSVReader struct {
	csv     *csv.Reader
	base    time.Time
	columns map[string]int
	line    int
	started bool
	skipped uint64
}

// NewCSVReader reads events from r. start_time values are seconds relative to base.
func NewCSVReader(r io.Reader, base time.Time) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &CSVReader{
		csv:     cr,
		base:    base,
		columns: columnIndex(defaultColumns),
	}
}

func columnIndex(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[strings.ToLower(strings.TrimSpace(n))] = i
	}
	return idx
}

// Skipped returns the number of rows ignored because their type is not an SPI event
func (r *CSVReader) Skipped() uint64 {
	return r.skipped
}

// Next returns the next event, or io.EOF at the end of input
func (r *CSVReader) Next() (Event, error) {
	for {
		record, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return Event{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
			}
			return Event{}, err
		}
		r.line++

		if !r.started {
			r.started = true
			if isHeader(record) {
				r.columns = columnIndex(record)
				continue
			}
		}

		typ, ok := r.field(record, "type")
		if !ok {
			return Event{}, fmt.Errorf("%w: line %d: missing type column", ErrBadRecord, r.line)
		}
		eventType, err := tmag5170.ParseEventType(strings.ToLower(typ))
		if err != nil {
			r.skipped++
			continue
		}

		event := Event{Type: eventType, Time: r.base}
		if start, ok := r.field(record, "start_time"); ok && start != "" {
			seconds, err := strconv.ParseFloat(start, 64)
			if err != nil {
				return Event{}, fmt.Errorf("%w: line %d: start_time %q", ErrBadRecord, r.line, start)
			}
			event.Time = r.base.Add(time.Duration(math.Round(seconds * float64(time.Second))))
		}

		if eventType == tmag5170.EventResult {
			if event.MOSI, err = r.byteField(record, "mosi"); err != nil {
				return Event{}, err
			}
			if event.MISO, err = r.byteField(record, "miso"); err != nil {
				return Event{}, err
			}
		}
		return event, nil
	}
}

func isHeader(record []string) bool {
	for _, f := range record {
		if strings.EqualFold(strings.TrimSpace(f), "type") {
			return true
		}
	}
	return false
}

func (r *CSVReader) field(record []string, name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

// byteField parses a data cell. An empty cell means the line was not sampled.
func (r *CSVReader) byteField(record []string, name string) ([]byte, error) {
	cell, ok := r.field(record, name)
	if !ok || cell == "" {
		return nil, nil
	}
	v, err := ParseByte(cell)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %s %q", ErrBadRecord, r.line, name, cell)
	}
	return []byte{v}, nil
}

// ParseByte parses a "0x.." hex or decimal byte value
func ParseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// WriteCSV writes events in the Logic 2 export layout, relative to base
func WriteCSV(w io.Writer, base time.Time, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(defaultColumns); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			"SPI",
			e.Type.String(),
			strconv.FormatFloat(e.Time.Sub(base).Seconds(), 'f', 9, 64),
			"0",
			cellHex(e.MOSI),
			cellHex(e.MISO),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellHex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return fmt.Sprintf("0x%02X", b[0])
}
