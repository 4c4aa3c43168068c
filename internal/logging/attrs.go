package logging

import (
	"log/slog"
	"slices"
	"strings"
)

// handlerState is the WithAttrs/WithGroup state shared by the journal and
// buffer handlers.
type handlerState struct {
	level  slog.Leveler
	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers the groups open when WithAttrs was called.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func (s handlerState) withAttrs(attrs []slog.Attr) handlerState {
	s.attrs = slices.Clip(s.attrs)
	for _, a := range attrs {
		s.attrs = append(s.attrs, groupedAttr{groups: s.groups, attr: a})
	}
	return s
}

func (s handlerState) withGroup(name string) handlerState {
	if name == "" {
		return s
	}
	s.groups = append(slices.Clip(s.groups), name)
	return s
}

// walk visits every handler and record attribute with its group path joined
// by sep. Groups are expanded; empty attributes are skipped. The module
// attribute is reported through module instead of fn.
func (s handlerState) walk(r slog.Record, sep string, fn func(key string, v slog.Value)) (module string) {
	module = "app"
	visit := func(groups []string, a slog.Attr) {
		if a.Key == "module" && len(groups) == 0 {
			module = a.Value.String()
			return
		}
		walkAttr(groups, a, sep, fn)
	}
	for _, ga := range s.attrs {
		visit(ga.groups, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		visit(s.groups, a)
		return true
	})
	return module
}

func walkAttr(groups []string, a slog.Attr, sep string, fn func(key string, v slog.Value)) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		// Inline groups have no key.
		if a.Key != "" {
			inner = append(slices.Clip(groups), a.Key)
		}
		for _, ga := range a.Value.Group() {
			walkAttr(inner, ga, sep, fn)
		}
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, sep) + sep + key
	}
	fn(key, a.Value)
}

// levelName converts slog.Level to the lowercase names used by the API.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
