//go:build !oto

package oto

import (
	"errors"
	"testing"

	"github.com/smazurov/soundnode/internal/backend"
)

func TestStubFactory(t *testing.T) {
	f := newFactory()
	if f.Init() {
		t.Fatal("stub Init succeeded")
	}
	if f.QuerySupport(backend.Playback) {
		t.Error("stub supports playback")
	}
	if got := f.Probe(backend.OutputDevices); got == nil || len(got) != 0 {
		t.Errorf("Probe = %#v", got)
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Playback); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateDevice = %v", err)
	}
	if Enabled {
		t.Error("Enabled true without the oto tag")
	}
}
