//go:build linux

package oss

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/smazurov/soundnode/internal/backend"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestInitWithoutNodes(t *testing.T) {
	dir := t.TempDir()
	f := newFactory(Settings{Playback: filepath.Join(dir, "dsp"), Capture: filepath.Join(dir, "dsp")})

	if f.Init() {
		t.Fatal("Init succeeded without device nodes")
	}
	if got := f.Probe(backend.OutputDevices); got == nil || len(got) != 0 {
		t.Errorf("Probe = %#v, want empty slice", got)
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Playback); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateDevice = %v, want ErrNotInitialized", err)
	}
}

func TestQuerySupportPerDirection(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dsp")
	f := newFactory(Settings{Playback: filepath.Join(dir, "dsp"), Capture: filepath.Join(dir, "dsp_in")})

	if !f.Init() {
		t.Fatal("Init failed")
	}
	if !f.QuerySupport(backend.Playback) {
		t.Error("playback should be supported")
	}
	if f.QuerySupport(backend.Capture) {
		t.Error("capture should not be supported without its node")
	}
	if got := f.Probe(backend.CaptureDevices); len(got) != 0 {
		t.Errorf("capture probe = %v, want empty", got)
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Capture); !errors.Is(err, backend.ErrUnsupported) {
		t.Errorf("capture CreateDevice = %v, want ErrUnsupported", err)
	}
}

func TestProbeOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dsp10", "dsp", "dsp2", "dsp1", "dspfoo", "mixer")
	f := newFactory(Settings{Playback: filepath.Join(dir, "dsp"), Capture: filepath.Join(dir, "dsp")})
	if !f.Init() {
		t.Fatal("Init failed")
	}

	want := []string{
		DefaultDeviceName,
		filepath.Join(dir, "dsp"),
		filepath.Join(dir, "dsp1"),
		filepath.Join(dir, "dsp2"),
		filepath.Join(dir, "dsp10"),
	}
	for range 2 {
		got := f.Probe(backend.OutputDevices)
		if len(got) != len(want) {
			t.Fatalf("Probe = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Probe[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	}
}

func TestCreateDeviceErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "dsp")
	f := newFactory(Settings{Playback: filepath.Join(dir, "dsp"), Capture: filepath.Join(dir, "dsp")})
	if !f.Init() {
		t.Fatal("Init failed")
	}

	tests := []struct {
		name   string
		device string
		wantOp string
		cause  error
	}{
		{"missing node", filepath.Join(dir, "dsp3"), "open", fs.ErrNotExist},
		{"not a sound device", DefaultDeviceName, "SNDCTL_DSP_SETFMT", unix.ENOTTY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := backend.DefaultDeviceConfig()
			cfg.Name = tt.device
			_, err := f.CreateDevice(cfg, backend.Playback)
			if !errors.Is(err, backend.ErrDeviceUnavailable) {
				t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("err = %v, want cause %v", err, tt.cause)
			}
			var de *backend.DeviceError
			if !errors.As(err, &de) || de.Op != tt.wantOp || de.Backend != backend.KindOSS {
				t.Errorf("DeviceError = %+v", de)
			}
		})
	}
}

func TestCreateDeviceBusyNodeDoesNotBlock(t *testing.T) {
	dir := t.TempDir()
	// A FIFO without a reader blocks a plain write-only open, like a
	// /dev/dsp held by another process.
	node := filepath.Join(dir, "dsp")
	if err := unix.Mkfifo(node, 0o600); err != nil {
		t.Skipf("mkfifo: %v", err)
	}
	f := newFactory(Settings{Playback: node, Capture: node})
	if !f.Init() {
		t.Fatal("Init failed")
	}

	done := make(chan error, 1)
	go func() {
		dev, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Playback)
		if dev != nil {
			dev.Close()
		}
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, backend.ErrDeviceUnavailable) {
			t.Errorf("err = %v, want ErrDeviceUnavailable", err)
		}
		if !errors.Is(err, unix.ENXIO) {
			t.Errorf("err = %v, want cause ENXIO", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("CreateDevice blocked on a node nobody is reading")
	}
}

func TestFragmentArg(t *testing.T) {
	tests := []struct {
		name string
		cfg  backend.DeviceConfig
		want int32
	}{
		{"default", backend.DefaultDeviceConfig(), 3<<16 | 12}, // 960*4 bytes rounds up to 4096
		{"tiny period", backend.DeviceConfig{Channels: 1, UpdateSize: 1, BufferSize: 1}, 2<<16 | 4},
		{"many periods", backend.DeviceConfig{Channels: 2, UpdateSize: 256, BufferSize: 2048}, 8<<16 | 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fragmentArg(tt.cfg); got != tt.want {
				t.Errorf("fragmentArg = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestFormatMapping(t *testing.T) {
	for _, f := range []backend.SampleFormat{backend.FormatU8, backend.FormatS16, backend.FormatS32, backend.FormatFloat32} {
		got, ok := sampleFormat(ossFormat(f))
		if !ok || got != f {
			t.Errorf("format %v mapped back to %v, %v", f, got, ok)
		}
	}
	if _, ok := sampleFormat(0x2); ok {
		t.Error("mu-law should not map to a sample format")
	}
}
