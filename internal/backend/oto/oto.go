// Package oto plays through github.com/ebitengine/oto, which picks the
// platform's native API. It is compiled in with the oto build tag.
package oto

import (
	"github.com/smazurov/soundnode/internal/backend"
)

// DefaultDeviceName is the only device; oto always uses the system default.
const DefaultDeviceName = "Oto Default"

var descriptor = backend.NewDescriptor(backend.KindOto, func() backend.Factory {
	return newFactory()
})

// Descriptor returns the oto backend descriptor.
func Descriptor() *backend.Descriptor {
	return descriptor
}

// GetFactory returns the process-wide oto factory.
func GetFactory() backend.Factory {
	return descriptor.Factory()
}
