// Package testutil holds helpers shared by package tests: a capturing slog
// handler and in-memory workbook fixtures.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogEntry is one captured log record with its attributes flattened,
// including those attached through Logger.With.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogRecorder is a slog.Handler that keeps every record in memory.
// Handlers derived through WithAttrs share the same store.
type LogRecorder struct {
	store  *logStore
	attrs  []slog.Attr
	prefix string
	t      *testing.T
}

// NewLogRecorder creates a recorder that also echoes records to t.Log when t is set.
func NewLogRecorder(t *testing.T) *LogRecorder {
	return &LogRecorder{store: &logStore{}, t: t}
}

// NewTestLogger returns a logger backed by a fresh recorder.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	rec := NewLogRecorder(t)
	return slog.New(rec), rec
}

func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, LogEntry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), prefixed(h.prefix, attrs)...)
	return &next
}

func (h *LogRecorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

// Entries returns a copy of every captured record.
func (h *LogRecorder) Entries() []LogEntry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogEntry, len(h.store.entries))
	copy(out, h.store.entries)
	return out
}

// EntriesAt returns the records captured at level.
func (h *LogRecorder) EntriesAt(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range h.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasMessage reports whether any record message contains msg.
func (h *LogRecorder) HasMessage(msg string) bool {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, msg) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries key=value.
func (h *LogRecorder) HasAttr(key string, value any) bool {
	for _, e := range h.Entries() {
		if v, ok := e.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Reset drops every captured record.
func (h *LogRecorder) Reset() {
	h.store.mu.Lock()
	h.store.entries = nil
	h.store.mu.Unlock()
}

// AssertLogged fails t unless a record at level contains msg.
func AssertLogged(t *testing.T, h *LogRecorder, level slog.Level, msg string) {
	t.Helper()
	for _, e := range h.EntriesAt(level) {
		if strings.Contains(e.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
	for _, e := range h.Entries() {
		t.Logf("  [%s] %s %v", e.Level, e.Message, e.Attrs)
	}
}

// AssertNoErrors fails t if any error-level record was captured.
func AssertNoErrors(t *testing.T, h *LogRecorder) {
	t.Helper()
	for _, e := range h.EntriesAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
