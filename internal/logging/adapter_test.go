package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter returned nil")
	}
	if adapter.Logger() == nil {
		t.Error("adapter logger should not be nil when created with nil")
	}
}

func TestSlogAdapter_InfoIsDebug(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	adapter.Info("schedule", "next", "10:00")
	if buf.Len() != 0 {
		t.Errorf("expected cron info to be suppressed at info level, got %q", buf.String())
	}
}

func TestSlogAdapter_Error(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	adapter.Error(errors.New("boom"), "job panicked", "entry", 3)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "job panicked", "error=boom", "entry=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
