package logging

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultBufferSize is the number of entries kept for the logs API.
const DefaultBufferSize = 1000

// LogEntry is one record kept in the log history.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the newest entries up to a fixed capacity.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewRingBuffer creates a buffer holding at most size entries.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Write stores entry, dropping the oldest one when the buffer is full.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	rb.entries[rb.next] = entry
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.full = true
	}
	rb.mu.Unlock()
}

// Count returns the number of stored entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.full {
		return len(rb.entries)
	}
	return rb.next
}

// ReadAll returns a copy of the stored entries, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Query(Filter{})
}

// Filter selects entries from the buffer. Zero values match everything.
// Module also matches dotted children, so "backend" includes
// "backend.alsa". Library matches the library attribute of dynamic loading
// messages.
type Filter struct {
	Module   string
	MinLevel string
	Library  string
	Since    time.Time
	Limit    int // newest N after filtering
}

func (f Filter) match(e *LogEntry, minLevel slog.Level, levelSet bool) bool {
	if f.Module != "" && e.Module != f.Module && !strings.HasPrefix(e.Module, f.Module+".") {
		return false
	}
	if levelSet {
		if l, ok := ParseLevel(e.Level); ok && l < minLevel {
			return false
		}
	}
	if f.Library != "" && e.Attributes["library"] != f.Library {
		return false
	}
	return f.Since.IsZero() || !e.Timestamp.Before(f.Since)
}

// Query returns the entries matching f, oldest first. The result is nil
// when nothing matches.
func (rb *RingBuffer) Query(f Filter) []LogEntry {
	minLevel, levelSet := ParseLevel(f.MinLevel)

	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var result []LogEntry
	visit := func(part []LogEntry) {
		for i := range part {
			if f.match(&part[i], minLevel, levelSet) {
				result = append(result, part[i])
			}
		}
	}
	if rb.full {
		visit(rb.entries[rb.next:])
	}
	visit(rb.entries[:rb.next])

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[len(result)-f.Limit:]
	}
	return result
}
