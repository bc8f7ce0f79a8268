package logger

import (
	"bytes"
	"strings"
	"testing"

	"sensor-dashboard/src/models"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":   LevelDebug,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarning,
		"WARN":    LevelWarning,
		"ERROR":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&models.MConfig{LogLevel: "WARNING"}, "poller")
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warning("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[poller] WARNING: warn 3") {
		t.Fatalf("missing warning line in %q", out)
	}
	if !strings.Contains(out, "[poller] ERROR: error 4") {
		t.Fatalf("missing error line in %q", out)
	}
}

func TestNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(nil, "root")
	l.SetOutput(&buf)

	l.Named("child").Info("hello")
	if !strings.Contains(buf.String(), "[child] INFO: hello") {
		t.Fatalf("child logger did not write to parent output: %q", buf.String())
	}
}
