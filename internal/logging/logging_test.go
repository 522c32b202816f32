package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be json")
	}
	if ParseFormat("logfmt") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("expected warn and error messages: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("text handler should include level: %q", out)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError)
	l.SetOutput(&buf)

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output after SetLevel: %q", out)
	}
}

func TestLoggerJSONWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(LevelInfo, FormatJSON)
	l.SetOutput(&buf)

	l.With("catalog", "messier").Info("loaded %d objects", 110)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "loaded 110 objects" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["catalog"] != "messier" {
		t.Errorf("catalog attr = %v", rec["catalog"])
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	// Must not panic and must not write anywhere.
	l.Error("nothing %s", "here")
	if l.Slog().Enabled(context.Background(), LevelError.slogLevel()) {
		t.Error("Discard logger should not enable any level")
	}
}
