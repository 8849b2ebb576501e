package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/ogurasousui/payroll-forensics/internal/platform/config"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LoggingConfig{Level: "warn", Encoding: "console"}, false)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}

	verbose, err := New(config.LoggingConfig{Level: "warn"}, true)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("verbose should enable debug level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LoggingConfig{Level: "loud"}, false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
