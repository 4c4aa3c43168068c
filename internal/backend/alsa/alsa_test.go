//go:build linux && (amd64 || arm64 || riscv64 || loong64 || arm || 386)

package alsa

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/smazurov/soundnode/internal/backend"
)

func TestInitWithoutCards(t *testing.T) {
	f := newFactory(Settings{DevRoot: t.TempDir()})

	if !f.Init() {
		t.Fatal("Init failed on an empty device directory")
	}
	if !f.QuerySupport(backend.Playback) {
		t.Error("QuerySupport false after Init")
	}

	for _, kind := range []backend.ProbeKind{backend.OutputDevices, backend.CaptureDevices} {
		got := f.Probe(kind)
		if got == nil || len(got) != 0 {
			t.Errorf("Probe(%v) = %#v, want empty slice", kind, got)
		}
	}
}

func TestInitMissingDirectory(t *testing.T) {
	f := newFactory(Settings{DevRoot: filepath.Join(t.TempDir(), "snd")})

	if f.Init() {
		t.Fatal("Init succeeded without a device directory")
	}
	if f.QuerySupport(backend.Playback) {
		t.Error("QuerySupport true after failed Init")
	}
	if got := f.Probe(backend.OutputDevices); len(got) != 0 {
		t.Errorf("Probe = %v", got)
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Playback); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateDevice = %v, want ErrNotInitialized", err)
	}
}

func TestInitRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "snd")
	if err := os.WriteFile(root, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if newFactory(Settings{DevRoot: root}).Init() {
		t.Error("Init succeeded on a regular file")
	}
}

func TestProbeStableWithFakeNodes(t *testing.T) {
	root := t.TempDir()
	// Regular files fail the control ioctls and are skipped.
	for _, name := range []string{"controlC0", "pcmC0D0p", "timer"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	f := newFactory(Settings{DevRoot: root})
	if !f.Init() {
		t.Fatal("Init failed")
	}

	first := f.Probe(backend.OutputDevices)
	second := f.Probe(backend.OutputDevices)
	if len(first) != len(second) {
		t.Fatalf("probe lengths differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestCreateDeviceErrors(t *testing.T) {
	f := newFactory(Settings{DevRoot: t.TempDir()})
	if !f.Init() {
		t.Fatal("Init failed")
	}

	tests := []struct {
		name   string
		device string
	}{
		{"default without devices", ""},
		{"default name", DefaultDeviceName},
		{"explicit hw", "hw:0,0"},
		{"probe entry", "HDA Intel PCH, ALC892 Analog (hw:1,0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := backend.DefaultDeviceConfig()
			cfg.Name = tt.device
			_, err := f.CreateDevice(cfg, backend.Playback)
			if !errors.Is(err, backend.ErrDeviceUnavailable) {
				t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("err = %v, want not-exist cause", err)
			}
			var de *backend.DeviceError
			if !errors.As(err, &de) || de.Backend != backend.KindALSA {
				t.Errorf("DeviceError = %+v", de)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	f := newFactory(Settings{DevRoot: t.TempDir()})

	tests := []struct {
		name     string
		wantCard int
		wantDev  int
		wantErr  bool
	}{
		{"hw:2,1", 2, 1, false},
		{"HDA Intel PCH, ALC892 Analog (hw:0,3)", 0, 3, false},
		{"USB Audio (hw) (hw:1,0)", 1, 0, false},
		{"plughw:0,0", 0, 0, true},
		{"Speakers", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, dev, err := f.resolve(tt.name, backend.Playback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (card != tt.wantCard || dev != tt.wantDev) {
				t.Errorf("resolve = %d,%d, want %d,%d", card, dev, tt.wantCard, tt.wantDev)
			}
		})
	}
}

func TestCurrentSettingsDefault(t *testing.T) {
	settings.Store(nil)
	if got := currentSettings().DevRoot; got != DefaultDevRoot {
		t.Errorf("DevRoot = %q, want %q", got, DefaultDevRoot)
	}
	Configure(Settings{DevRoot: "/tmp/snd"})
	defer settings.Store(nil)
	if got := currentSettings().DevRoot; got != "/tmp/snd" {
		t.Errorf("DevRoot = %q", got)
	}
}
