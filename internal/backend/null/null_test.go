package null

import (
	"errors"
	"testing"
	"time"

	"github.com/smazurov/soundnode/internal/backend"
)

func TestNullFactory(t *testing.T) {
	f := newFactory()

	if f.QuerySupport(backend.Playback) {
		t.Error("QuerySupport true before Init")
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Playback); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateDevice before Init = %v", err)
	}
	if !f.Init() {
		t.Fatal("Init failed")
	}

	if !f.QuerySupport(backend.Playback) || f.QuerySupport(backend.Capture) {
		t.Error("null backend is playback only")
	}
	if got := f.Probe(backend.OutputDevices); len(got) != 1 || got[0] != DefaultDeviceName {
		t.Errorf("output probe = %v", got)
	}
	if got := f.Probe(backend.CaptureDevices); got == nil || len(got) != 0 {
		t.Errorf("capture probe = %#v, want empty slice", got)
	}
	if _, err := f.CreateDevice(backend.DefaultDeviceConfig(), backend.Capture); !errors.Is(err, backend.ErrUnsupported) {
		t.Errorf("capture CreateDevice = %v", err)
	}

	cfg := backend.DefaultDeviceConfig()
	cfg.Name = "Speakers"
	if _, err := f.CreateDevice(cfg, backend.Playback); !errors.Is(err, backend.ErrDeviceUnavailable) {
		t.Errorf("unknown device = %v", err)
	}
}

func TestWritePacing(t *testing.T) {
	start := time.Unix(1000, 0)
	var slept []time.Duration
	f := newFactory()
	f.now = func() time.Time { return start }
	f.sleep = func(d time.Duration) { slept = append(slept, d) }
	f.Init()

	cfg := backend.DeviceConfig{SampleRate: 1000, Channels: 1, Format: backend.FormatS16, UpdateSize: 100, BufferSize: 200}
	dev, err := f.CreateDevice(cfg, backend.Playback)
	if err != nil {
		t.Fatal(err)
	}

	period := make([]byte, 100*cfg.FrameSize())
	for range 2 {
		if n, err := dev.Write(period); err != nil || n != len(period) {
			t.Fatalf("Write = %d, %v", n, err)
		}
	}
	if len(slept) != 0 {
		t.Fatalf("slept %v while filling the buffer", slept)
	}

	dev.Write(period)
	if len(slept) != 1 || slept[0] != 100*time.Millisecond {
		t.Errorf("slept %v, want [100ms]", slept)
	}

	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Write(period); !errors.Is(err, backend.ErrDeviceClosed) {
		t.Errorf("Write after Close = %v", err)
	}
}

func TestWritePacingSplitFrames(t *testing.T) {
	start := time.Unix(1000, 0)
	var slept []time.Duration
	f := newFactory()
	f.now = func() time.Time { return start }
	f.sleep = func(d time.Duration) { slept = append(slept, d) }
	f.Init()

	// Stereo s16 frames are 4 bytes; 3 byte writes straddle frame edges.
	cfg := backend.DeviceConfig{SampleRate: 1000, Channels: 2, Format: backend.FormatS16, BufferSize: 10}
	dev, err := f.CreateDevice(cfg, backend.Playback)
	if err != nil {
		t.Fatal(err)
	}

	chunk := make([]byte, 3)
	for range 16 {
		if n, err := dev.Write(chunk); err != nil || n != len(chunk) {
			t.Fatalf("Write = %d, %v", n, err)
		}
	}
	// 48 bytes are 12 frames, 2 past the buffer.
	if len(slept) == 0 || slept[len(slept)-1] != 2*time.Millisecond {
		t.Errorf("slept %v, want last wait 2ms", slept)
	}
}

func TestGetFactorySingleton(t *testing.T) {
	if GetFactory() != GetFactory() {
		t.Error("GetFactory returned different instances")
	}
	if Descriptor().Kind() != backend.KindNull {
		t.Errorf("kind = %v", Descriptor().Kind())
	}
}
