package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigureWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "excalibur.log")
	if err := Configure(Options{Debug: true, LogFile: path}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	New("test").Debug("folder resolved", "id", "abc123")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "folder resolved") || !strings.Contains(string(data), "abc123") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestConfigureDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.log")
	if err := Configure(Options{LogFile: path}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	logger := New("test")
	logger.Debug("hidden")
	logger.Info("shown")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug entry written at info level: %q", data)
	}
	if !strings.Contains(string(data), "shown") {
		t.Fatalf("info entry missing: %q", data)
	}
}
