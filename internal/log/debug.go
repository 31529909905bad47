// Package log provides the debug log used while the TUI owns the terminal.
// Messages are buffered in memory until a log file is configured; without
// one they are dropped so nothing ever writes to the screen.
package log

import (
	"bytes"
	"log"
	"os"
	"sync"
)

// debugWriter implements io.Writer so it can back a standard log.Logger.
type debugWriter struct {
	mu      sync.Mutex
	file    *os.File
	pending bytes.Buffer
	discard bool
}

var (
	writer = &debugWriter{}
	std    = log.New(writer, "", log.LstdFlags|log.Lmicroseconds)
)

// Write appends to the log file when one is open, otherwise buffers the
// bytes until SetFile decides their fate.
func (w *debugWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.discard {
		return len(p), nil
	}

	if w.file != nil {
		n, err := w.file.Write(p)
		// Sync so a crash mid-session still leaves the tail on disk.
		_ = w.file.Sync()
		return n, err
	}

	return w.pending.Write(p)
}

// SetFile opens path for appending and flushes any buffered messages to
// it. An empty path switches the logger into discard mode.
func SetFile(path string) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.file != nil {
		_ = writer.file.Close()
		writer.file = nil
	}

	if path == "" {
		writer.discard = true
		writer.pending.Reset()
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		writer.discard = true
		writer.pending.Reset()
		return err
	}

	writer.file = f
	writer.discard = false

	if writer.pending.Len() > 0 {
		_, _ = f.Write(writer.pending.Bytes())
		_ = f.Sync()
		writer.pending.Reset()
	}

	return nil
}

// Printf writes a formatted debug message via the standard logger.
func Printf(format string, args ...any) {
	std.Printf(format, args...)
}

// Println writes a debug message via the standard logger.
func Println(v ...any) {
	std.Println(v...)
}

// Close closes the debug log file if open.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.file == nil {
		return nil
	}

	err := writer.file.Close()
	writer.file = nil
	return err
}
