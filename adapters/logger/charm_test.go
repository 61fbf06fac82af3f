package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/elum-utils/chatfilter/interfaces"
)

var _ interfaces.Logger = (*CharmLogger)(nil)

func TestCharmLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Output: &buf, Prefix: "chatfilter"})

	l.Warn("vocabulary entry skipped", map[string]any{"value": "([", "kind": "pattern"})
	out := buf.String()
	for _, want := range []string{"chatfilter", "vocabulary entry skipped", "kind=pattern", "value="} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	}
	if strings.Index(out, "kind=") > strings.Index(out, "value=") {
		t.Fatalf("fields are not sorted: %q", out)
	}
}

func TestCharmLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})
	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}
	l.Error("shown", nil)
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("error entry missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.DebugLevel,
		"WARNING": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"loud":    log.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
