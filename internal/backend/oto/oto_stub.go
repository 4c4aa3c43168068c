//go:build !oto

package oto

import (
	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/logging"
)

// Enabled reports whether the backend was compiled in.
const Enabled = false

type factory struct {
	backend.Lifecycle
}

func newFactory() *factory {
	return &factory{}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(func() bool {
		logging.GetLogger("backend.oto").Warn("Oto support not enabled (build with -tags oto)")
		return false
	})
}

func (f *factory) QuerySupport(backend.Direction) bool {
	return false
}

func (f *factory) Probe(backend.ProbeKind) []string {
	return []string{}
}

func (f *factory) CreateDevice(backend.DeviceConfig, backend.Direction) (backend.Device, error) {
	return nil, f.Require()
}
