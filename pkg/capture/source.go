// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

// ErrUnknownFormat is returned by Open for unsupported file extensions
var ErrUnknownFormat = errors.New("unknown capture format")

// FileSource is a Source backed by an open file
type FileSource interface {
	Source
	io.Closer
}

type csvFile struct {
	*CSVReader
	file *os.File
}

func (c *csvFile) Close() error {
	return c.file.Close()
}

// Open opens a capture file, choosing the reader by extension:
// .csv for Logic 2 exports, .tcap for CBOR captures.
// CSV timestamps are placed relative to the file modification time.
func Open(path string, filter Filter) (FileSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		base := time.Time{}
		if info, err := f.Stat(); err == nil {
			base = info.ModTime()
		}
		return &csvFile{CSVReader: NewCSVReader(f, base), file: f}, nil
	case CaptureExtension:
		return NewFilteredReader(path, filter)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Replay feeds every event of src to asm and calls fn for each completed
// transaction. Bytes still buffered at the end of input are flushed as a
// final transaction.
func Replay(src Source, asm *tmag5170.Assembler, fn func(*tmag5170.DecodedTransaction) error) error {
	var last time.Time
	for {
		event, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		last = event.Time
		if decoded := asm.Feed(event.BusEvent()); decoded != nil {
			if err := fn(decoded); err != nil {
				return err
			}
		}
	}

	if decoded := asm.Flush(last); decoded != nil {
		return fn(decoded)
	}
	return nil
}
