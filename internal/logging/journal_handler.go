package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

// SyslogIdentifier tags every journal entry; filter with journalctl -t soundnode.
const SyslogIdentifier = "soundnode"

// Journal MESSAGE_IDs for the optional library diagnostics, so that
// journalctl MESSAGE_ID=... finds every failed load regardless of wording.
const (
	MessageIDLibraryLoad = "6f1c2a0e9d8b4c57a1e3f40b72d95c18"
	MessageIDSymbolLoad  = "b04e7d3a52c94f8e9a6d1c3b8e27f560"
)

var messageIDs = map[string]string{
	"Failed to load library":  MessageIDLibraryLoad,
	"Failed to load function": MessageIDSymbolLoad,
}

// JournalHandler sends records to the systemd journal with attributes as
// structured fields.
type JournalHandler struct {
	handlerState
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{handlerState{level: level}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends the log record to systemd journal.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	priority := journalPriority(r.Level)
	return journal.Send(r.Message, priority, h.fields(r, priority))
}

func (h *JournalHandler) fields(r slog.Record, priority journal.Priority) map[string]string {
	fields := map[string]string{
		"PRIORITY":          strconv.Itoa(int(priority)),
		"SYSLOG_IDENTIFIER": SyslogIdentifier,
	}
	if id, ok := messageIDs[r.Message]; ok {
		fields["MESSAGE_ID"] = id
	}
	module := h.walk(r, "_", func(key string, v slog.Value) {
		if name := journalField(key); name != "" {
			fields[name] = journalValue(v)
		}
	})
	fields["SOUNDNODE_MODULE"] = module
	return fields
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &JournalHandler{h.withAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	return &JournalHandler{h.withGroup(name)}
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// journalField maps an attribute key to a valid journal field name:
// upper case letters, digits and underscores, not starting with an
// underscore, which marks trusted fields. Keys with nothing usable are
// dropped.
func journalField(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return ""
	}
	switch name {
	case "MESSAGE", "PRIORITY", "SYSLOG_IDENTIFIER", "MESSAGE_ID":
		return "ATTR_" + name
	}
	return name
}

func journalValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// IsJournalAvailable checks if systemd journal is available.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
