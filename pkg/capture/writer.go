// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileWriter appends events to a CBOR capture file.
// It is safe for concurrent use.
type FileWriter struct {
	file      *os.File
	encoder   *cbor.Encoder
	sessionID string
	mu        sync.Mutex
	closed    bool
	count     uint64
}

// NewFileWriter opens path for appending, creating it if needed. Every event
// written is stamped with sessionID unless it already carries one.
func NewFileWriter(path, sessionID string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileWriter{
		file:      f,
		encoder:   newEncoder(f),
		sessionID: sessionID,
	}, nil
}

// SessionID returns the session the writer stamps events with
func (w *FileWriter) SessionID() string {
	return w.sessionID
}

// Write appends one event. Writes after Close are dropped.
func (w *FileWriter) Write(event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	if event.SessionID == "" {
		event.SessionID = w.sessionID
	}
	if err := w.encoder.Encode(event); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of events written
func (w *FileWriter) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the file. It is safe to call Close multiple times.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
