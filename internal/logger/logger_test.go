package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestParseLevelIsCaseInsensitive(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		"DEBUG":   DEBUG,
		"Warn":    WARN,
		"error":   ERROR,
		"info":    INFO,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFiltersByLevelAndRendersFields(t *testing.T) {
	var buf bytes.Buffer
	l := &fileLogger{config: Config{Level: INFO}}
	l.writers = []io.Writer{&buf}

	l.log(DEBUG, "hidden", nil)
	l.log(WARN, "disk almost full", []Field{F("free_mb", 12), F("path", "/var/log")})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked through INFO filter: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "disk almost full") {
		t.Errorf("warn line missing level or message: %q", out)
	}
	if !strings.Contains(out, "free_mb=12") || !strings.Contains(out, "path=/var/log") {
		t.Errorf("fields not rendered: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("want exactly one line, got %q", out)
	}
}
