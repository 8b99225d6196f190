package logging

import (
	"os"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	// Write once; just ensuring no panic / basic functionality.
	log.Info("test_message_from_logging_test")
}

func TestNewLogger_DebugLowersLevel(t *testing.T) {
	log, err := NewLogger(t.TempDir(), true)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("want debug level enabled")
	}

	quiet, err := NewLogger(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = quiet.Sync() }()
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("want debug level disabled by default")
	}
}
