package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// CharmLogger implements interfaces.Logger on top of charmbracelet/log.
type CharmLogger struct {
	l *log.Logger
}

// Options configures the logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	Level  string
	Output io.Writer
	Prefix string
	// ReportTimestamp adds timestamps to entries.
	ReportTimestamp bool
}

// New creates a logger. Output defaults to stderr.
func New(opt Options) *CharmLogger {
	out := opt.Output
	if out == nil {
		out = os.Stderr
	}
	return &CharmLogger{l: log.NewWithOptions(out, log.Options{
		Level:           ParseLevel(opt.Level),
		Prefix:          opt.Prefix,
		ReportTimestamp: opt.ReportTimestamp,
	})}
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (c *CharmLogger) Debug(msg string, fields map[string]any) { c.l.Debug(msg, keyvals(fields)...) }
func (c *CharmLogger) Info(msg string, fields map[string]any)  { c.l.Info(msg, keyvals(fields)...) }
func (c *CharmLogger) Warn(msg string, fields map[string]any)  { c.l.Warn(msg, keyvals(fields)...) }
func (c *CharmLogger) Error(msg string, fields map[string]any) { c.l.Error(msg, keyvals(fields)...) }

// keyvals flattens fields in key order so output is stable.
func keyvals(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
