package selector

import (
	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/backend/alsa"
	"github.com/smazurov/soundnode/internal/backend/null"
	"github.com/smazurov/soundnode/internal/backend/oss"
	"github.com/smazurov/soundnode/internal/backend/oto"
	"github.com/smazurov/soundnode/internal/backend/pulse"
)

// DefaultRegistry returns every compiled-in backend in default priority
// order. Null comes last so that selection never fails outright.
func DefaultRegistry() []*backend.Descriptor {
	registry := []*backend.Descriptor{
		pulse.Descriptor(),
		alsa.Descriptor(),
		oss.Descriptor(),
	}
	if oto.Enabled {
		registry = append(registry, oto.Descriptor())
	}
	return append(registry, null.Descriptor())
}
