package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf, Prefix: "test"})
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  Level
		known bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.known {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.known)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered message: %q", out)
	}
	want := "2026-01-02T03:04:05.000 [WARN] test: shown 1\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestLoggerFieldsSorted(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)

	l.WithComponent("history").WithField("handle", 3).Debug("moved")

	if !strings.HasSuffix(buf.String(), "moved {component=history, handle=3}\n") {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestDerivedLoggerDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)

	_ = l.WithField("k", "v")
	l.Info("plain")

	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l.Enabled(LevelError) {
		t.Error("nop logger should not be enabled")
	}
	l.Error("nothing")
}
