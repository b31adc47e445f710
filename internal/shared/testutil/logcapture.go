package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log line with its attributes flattened
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logSink is shared by a capture handler and every handler derived from it
type logSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records log lines in memory. Attributes added through
// With are kept on every record the derived logger writes.
type CaptureHandler struct {
	sink  *logSink
	attrs []slog.Attr
	group string
	t     *testing.T
}

// NewCaptureHandler creates an empty capture handler. When t is non-nil
// each record is echoed to the test log.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{sink: &logSink{}, t: t}
}

// NewTestLogger returns a logger writing into a fresh capture handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.sink.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

// Records returns a copy of everything captured so far
func (h *CaptureHandler) Records() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	out := make([]LogRecord, len(h.sink.records))
	copy(out, h.sink.records)
	return out
}

// Find returns the first record at level whose message contains message
func (h *CaptureHandler) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogContains fails the test unless a record at level contains message
func AssertLogContains(t *testing.T, h *CaptureHandler, level slog.Level, message string) LogRecord {
	t.Helper()
	r, ok := h.Find(level, message)
	if !ok {
		t.Errorf("no %s log containing %q", level, message)
		for _, got := range h.Records() {
			t.Logf("  captured [%s] %s", got.Level, got.Message)
		}
	}
	return r
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, h *CaptureHandler) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
