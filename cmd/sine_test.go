package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/smazurov/soundnode/internal/backend"
)

type recordingDevice struct {
	cfg     backend.DeviceConfig
	buf     bytes.Buffer
	writes  int
	failAt  int
	onWrite func()
}

func (d *recordingDevice) ID() string                   { return "rec" }
func (d *recordingDevice) Name() string                 { return "Recorder" }
func (d *recordingDevice) Direction() backend.Direction { return backend.Playback }
func (d *recordingDevice) Config() backend.DeviceConfig { return d.cfg }
func (d *recordingDevice) Read([]byte) (int, error)     { return 0, backend.ErrUnsupported }
func (d *recordingDevice) Close() error                 { return nil }

func (d *recordingDevice) Write(p []byte) (int, error) {
	d.writes++
	if d.failAt > 0 && d.writes == d.failAt {
		return 0, backend.ErrDeviceClosed
	}
	if d.onWrite != nil {
		d.onWrite()
	}
	return d.buf.Write(p)
}

func testConfig(format backend.SampleFormat) backend.DeviceConfig {
	return backend.DeviceConfig{SampleRate: 8000, Channels: 2, Format: format, UpdateSize: 160}
}

func TestSineWaveFormats(t *testing.T) {
	tests := []struct {
		format backend.SampleFormat
		// sample returns channel 0 of frame i as a value in [-1, 1]
		sample func(b []byte, i int) float64
	}{
		{backend.FormatS16, func(b []byte, i int) float64 {
			return float64(int16(binary.NativeEndian.Uint16(b[i*4:]))) / math.MaxInt16
		}},
		{backend.FormatU8, func(b []byte, i int) float64 {
			return (float64(b[i*2]) - 128) / 127
		}},
		{backend.FormatS32, func(b []byte, i int) float64 {
			return float64(int32(binary.NativeEndian.Uint32(b[i*8:]))) / math.MaxInt32
		}},
		{backend.FormatFloat32, func(b []byte, i int) float64 {
			return float64(math.Float32frombits(binary.NativeEndian.Uint32(b[i*8:])))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			cfg := testConfig(tt.format)
			// 1kHz at 8kHz peaks on frame 2.
			wave := newSineWave(1000, 0.5, cfg)
			buf := make([]byte, 8*cfg.FrameSize())
			if n := wave.fill(buf); n != 8 {
				t.Fatalf("fill = %d frames, want 8", n)
			}

			const tol = 0.01
			if v := tt.sample(buf, 0); math.Abs(v) > tol {
				t.Errorf("frame 0 = %f, want 0", v)
			}
			if v := tt.sample(buf, 2); math.Abs(v-0.5) > tol {
				t.Errorf("frame 2 = %f, want 0.5", v)
			}
			if v := tt.sample(buf, 6); math.Abs(v+0.5) > tol {
				t.Errorf("frame 6 = %f, want -0.5", v)
			}
		})
	}
}

func TestSineWaveChannelsMatch(t *testing.T) {
	cfg := testConfig(backend.FormatS16)
	wave := newSineWave(440, 1, cfg)
	buf := make([]byte, 32*cfg.FrameSize())
	wave.fill(buf)
	for off := 0; off < len(buf); off += 4 {
		if !bytes.Equal(buf[off:off+2], buf[off+2:off+4]) {
			t.Fatalf("channels differ at byte %d", off)
		}
	}
}

func TestSineWaveClampsVolume(t *testing.T) {
	wave := newSineWave(440, 3, testConfig(backend.FormatS16))
	if wave.volume != 1 {
		t.Errorf("volume = %f, want 1", wave.volume)
	}
}

func TestWriteFrames(t *testing.T) {
	dev := &recordingDevice{cfg: testConfig(backend.FormatS16)}
	wave := newSineWave(440, 0.2, dev.cfg)

	if err := writeFrames(context.Background(), dev, wave, 1000); err != nil {
		t.Fatal(err)
	}
	if got, want := dev.buf.Len(), 1000*dev.cfg.FrameSize(); got != want {
		t.Errorf("wrote %d bytes, want %d", got, want)
	}
	// 1000 frames in periods of 160.
	if dev.writes != 7 {
		t.Errorf("writes = %d, want 7", dev.writes)
	}
}

func TestWriteFramesStopsOnError(t *testing.T) {
	dev := &recordingDevice{cfg: testConfig(backend.FormatS16), failAt: 2}
	wave := newSineWave(440, 0.2, dev.cfg)
	err := writeFrames(context.Background(), dev, wave, 8000)
	if !errors.Is(err, backend.ErrDeviceClosed) {
		t.Errorf("err = %v", err)
	}
}

func TestWriteFramesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dev := &recordingDevice{cfg: testConfig(backend.FormatS16), onWrite: cancel}
	wave := newSineWave(440, 0.2, dev.cfg)
	err := writeFrames(ctx, dev, wave, 8000)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if dev.writes != 1 {
		t.Errorf("writes = %d, want 1", dev.writes)
	}
}

func TestPlayToneRealtime(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dev := &recordingDevice{cfg: testConfig(backend.FormatS16)}
	wave := newSineWave(440, 0.2, dev.cfg)

	var asked int
	raise := func(priority int) (int, error) {
		asked = priority
		return 0, errors.New("rtkit: not granted")
	}
	if err := playTone(context.Background(), dev, wave, 320, raise, logger); err != nil {
		t.Fatalf("playTone = %v", err)
	}
	if asked != rtPriority {
		t.Errorf("asked for priority %d", asked)
	}
	if dev.writes != 2 {
		t.Errorf("writes = %d, want 2", dev.writes)
	}
}
