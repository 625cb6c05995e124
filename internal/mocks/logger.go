// Package mocks holds test doubles for the ports interfaces.
package mocks

import (
	"sync"

	"cardbinder.app/internal/ports"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// Logger records every log call for later inspection
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("DEBUG", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("INFO", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("WARN", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("ERROR", msg, fields) }

func (l *Logger) record(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a copy of the captured entries
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns how many entries were logged at level
func (l *Logger) Count(level string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
