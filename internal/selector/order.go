package selector

import (
	"strings"

	"github.com/smazurov/soundnode/internal/backend"
)

// ParseOrder splits a comma separated backend list such as "alsa,-pulse,".
// Surrounding blanks are trimmed; a trailing comma is kept as an empty entry.
func ParseOrder(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// resolveOrder applies an order list to the registry.
//
// Named backends are tried first in the listed order and "-name" removes a
// backend entirely. When the list names at least one backend it replaces the
// default order unless it ends with an empty entry, in which case the
// remaining registry backends follow. A list of removals only keeps the
// default order minus the removed backends. Unknown names are returned
// separately.
func resolveOrder(registry []*backend.Descriptor, order []string) (resolved []*backend.Descriptor, unknown []string) {
	byName := make(map[string]*backend.Descriptor, len(registry))
	for _, d := range registry {
		byName[d.Name()] = d
	}

	disabled := make(map[string]bool)
	picked := make(map[string]bool)
	for _, entry := range order {
		name := strings.ToLower(entry)
		switch {
		case name == "":
			continue
		case strings.HasPrefix(name, "-"):
			name = strings.TrimPrefix(name, "-")
			if _, ok := byName[name]; !ok {
				unknown = append(unknown, entry)
				continue
			}
			disabled[name] = true
			continue
		}

		d, ok := byName[name]
		if !ok {
			unknown = append(unknown, entry)
			continue
		}
		if !picked[name] {
			picked[name] = true
			resolved = append(resolved, d)
		}
	}
	keepRest := len(picked) == 0 || order[len(order)-1] == ""

	filtered := resolved[:0]
	for _, d := range resolved {
		if !disabled[d.Name()] {
			filtered = append(filtered, d)
		}
	}
	resolved = filtered

	if keepRest {
		for _, d := range registry {
			if !picked[d.Name()] && !disabled[d.Name()] {
				resolved = append(resolved, d)
			}
		}
	}
	return resolved, unknown
}
