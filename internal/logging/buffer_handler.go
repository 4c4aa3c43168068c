package logging

import (
	"context"
	"log/slog"
	"time"
)

// LogCallback receives every entry written to the log history. It lets
// packages above logging publish log events without an import cycle.
type LogCallback func(entry LogEntry)

// BufferHandler records entries in the log history returned by GetBuffer.
type BufferHandler struct {
	handlerState
}

// NewBufferHandler creates a buffer handler.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{handlerState{level: level}}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	entry := h.entry(r)
	if buffer := GetBuffer(); buffer != nil {
		buffer.Write(entry)
	}
	if callback := currentCallback(); callback != nil {
		callback(entry)
	}
	return nil
}

func (h *BufferHandler) entry(r slog.Record) LogEntry {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	module := h.walk(r, ".", func(key string, v slog.Value) {
		attrs[key] = bufferValue(v)
	})
	if len(attrs) == 0 {
		attrs = nil
	}
	return LogEntry{
		Timestamp:  r.Time,
		Level:      levelName(r.Level),
		Module:     module,
		Message:    r.Message,
		Attributes: attrs,
	}
}

// bufferValue keeps values JSON friendly for the logs API.
func bufferValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.Any()
}

// WithAttrs implements slog.Handler.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferHandler{h.withAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	return &BufferHandler{h.withGroup(name)}
}
