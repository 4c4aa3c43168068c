package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetState(t *testing.T) {
	t.Helper()
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logBuffer = NewRingBuffer(defaultBufferSize)
	logCallback = nil
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState(t)

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"dynload":       "debug",
			"backend.pulse": "warn",
			"backend":       "debug",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"dynload", true, true, true},
		{"backend.pulse", false, false, true},
		{"backend.alsa", true, true, true},
		{"backendx", false, true, true},
		{"selector", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState(t)

	before := GetLogger("backend.alsa")
	handlerBefore := before.Handler()
	if handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"backend.alsa": "debug"},
	})

	// The level var is shared, so handlers handed out earlier follow along.
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("early handler should see the configured module level")
	}
	if !GetLogger("backend.alsa").Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger after Initialize should have debug enabled")
	}
}

func TestSetLevels(t *testing.T) {
	resetState(t)
	Initialize(Config{Level: "info", Format: "text"})

	logger := GetLogger("dynload")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug enabled before SetLevels")
	}

	SetLevels("warn", map[string]string{"dynload": "debug"})
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("module override not applied to existing logger")
	}
	if GetLogger("selector").Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("global level not applied to new logger")
	}

	SetLevels("info", nil)
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("removed override still active")
	}
}

func TestLoggerWritesToBuffer(t *testing.T) {
	resetState(t)
	Initialize(Config{Level: "debug", Format: "text"})

	var seen []LogEntry
	SetLogCallback(func(entry LogEntry) { seen = append(seen, entry) })

	GetLogger("dynload").Warn("Failed to load library",
		"library", "libexample.so.1",
		"error", errors.New("not found"))

	entries := GetBuffer().Query(Filter{Module: "dynload"})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Level != "warn" || entry.Message != "Failed to load library" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Attributes["library"] != "libexample.so.1" || entry.Attributes["error"] != "not found" {
		t.Errorf("attributes = %v", entry.Attributes)
	}
	if len(seen) != 1 {
		t.Errorf("callback saw %d entries, want 1", len(seen))
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")
	logger.Info("both handlers")

	output := buf.String()
	if count := strings.Count(output, "debug only message"); count != 1 {
		t.Errorf("debug message written %d times, want 1. Output: %s", count, output)
	}
	if count := strings.Count(output, "both handlers"); count != 2 {
		t.Errorf("info message written %d times, want 2. Output: %s", count, output)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg, Timestamp: time.Unix(int64(i), 0)})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count = %d, want 3", rb.Count())
	}
	var got []string
	for _, e := range rb.ReadAll() {
		got = append(got, e.Message)
	}
	if strings.Join(got, "") != "cde" {
		t.Errorf("ReadAll = %v, want [c d e]", got)
	}
}

func TestRingBufferQuery(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Write(LogEntry{Module: "dynload", Level: "debug", Message: "1"})
	rb.Write(LogEntry{Module: "dynload", Level: "warn", Message: "2"})
	rb.Write(LogEntry{Module: "selector", Level: "info", Message: "3"})
	rb.Write(LogEntry{Module: "dynload", Level: "error", Message: "4"})
	rb.Write(LogEntry{Module: "backend.alsa", Level: "warn", Message: "5",
		Timestamp:  time.Unix(100, 0),
		Attributes: map[string]any{"library": "libasound.so.2"}})
	rb.Write(LogEntry{Module: "backendx", Level: "info", Message: "6", Timestamp: time.Unix(200, 0)})

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"all", Filter{}, "123456"},
		{"module", Filter{Module: "dynload"}, "124"},
		{"module children", Filter{Module: "backend"}, "5"},
		{"min level", Filter{MinLevel: "warn"}, "245"},
		{"library", Filter{Library: "libasound.so.2"}, "5"},
		{"since", Filter{Since: time.Unix(150, 0)}, "6"},
		{"limit keeps newest", Filter{Limit: 2}, "56"},
		{"combined", Filter{Module: "dynload", MinLevel: "info", Limit: 1}, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got strings.Builder
			for _, e := range rb.Query(tt.filter) {
				got.WriteString(e.Message)
			}
			if got.String() != tt.want {
				t.Errorf("Query(%+v) = %q, want %q", tt.filter, got.String(), tt.want)
			}
		})
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Errorf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			} else if *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}
