// Package logging builds the component loggers used across the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Options controls where diagnostics go and how verbose they are.
type Options struct {
	Debug   bool
	LogFile string
}

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	level            = log.InfoLevel
	closer io.Closer
)

// Configure applies opts to every logger created afterwards. When LogFile is
// set, output is written to both stderr and the file.
func Configure(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	out = os.Stderr
	level = log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}

	if opts.LogFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", opts.LogFile, err)
	}
	out = io.MultiWriter(os.Stderr, f)
	closer = f
	return nil
}

// Close releases the log file opened by Configure, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	out = os.Stderr
	return err
}

// New returns a logger tagged with the given component prefix.
func New(prefix string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.NewWithOptions(out, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: true,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
