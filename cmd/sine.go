package cmd

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"runtime"

	"github.com/smazurov/soundnode/internal/backend"
)

// sineWave renders a sine tone as interleaved frames in a device format.
type sineWave struct {
	step     float64
	phase    float64
	volume   float64
	channels int
	format   backend.SampleFormat
}

func newSineWave(freq, volume float64, cfg backend.DeviceConfig) *sineWave {
	return &sineWave{
		step:     2 * math.Pi * freq / float64(cfg.SampleRate),
		volume:   min(max(volume, 0), 1),
		channels: cfg.Channels,
		format:   cfg.Format,
	}
}

// fill writes whole frames into buf and returns how many it wrote.
func (s *sineWave) fill(buf []byte) int {
	size := s.format.BytesPerSample()
	frames := len(buf) / (size * s.channels)
	off := 0
	for range frames {
		v := s.volume * math.Sin(s.phase)
		s.phase = math.Mod(s.phase+s.step, 2*math.Pi)
		for range s.channels {
			putSample(buf[off:], s.format, v)
			off += size
		}
	}
	return frames
}

func putSample(b []byte, f backend.SampleFormat, v float64) {
	switch f {
	case backend.FormatU8:
		b[0] = uint8(128 + math.Round(v*127))
	case backend.FormatS32:
		binary.NativeEndian.PutUint32(b, uint32(int32(math.Round(v*math.MaxInt32))))
	case backend.FormatFloat32:
		binary.NativeEndian.PutUint32(b, math.Float32bits(float32(v)))
	default:
		binary.NativeEndian.PutUint16(b, uint16(int16(math.Round(v*math.MaxInt16))))
	}
}

// rtPriority is the SCHED_RR priority requested for the writer thread.
const rtPriority = 10

// raiseFunc makes the calling OS thread realtime and returns the granted
// priority.
type raiseFunc func(priority int) (int, error)

// playTone writes frames of wave to dev from a dedicated OS thread. The
// thread is never unlocked, so it exits with the goroutine and a raised
// priority cannot leak into the scheduler's pool.
func playTone(ctx context.Context, dev backend.Device, wave *sineWave, frames int, raise raiseFunc, logger *slog.Logger) error {
	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		if raise != nil {
			if prio, err := raise(rtPriority); err != nil {
				logger.Warn("Realtime priority not available", "error", err)
			} else {
				logger.Info("Writer thread is realtime", "priority", prio)
			}
		}
		done <- writeFrames(ctx, dev, wave, frames)
	}()
	return <-done
}

func writeFrames(ctx context.Context, dev backend.Device, wave *sineWave, frames int) error {
	cfg := dev.Config()
	period := cfg.UpdateSize
	if period <= 0 {
		period = cfg.SampleRate / 50
	}
	frameSize := cfg.FrameSize()
	buf := make([]byte, period*frameSize)

	for frames > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := wave.fill(buf[:min(period, frames)*frameSize])
		p := buf[:n*frameSize]
		for len(p) > 0 {
			written, err := dev.Write(p)
			if err != nil {
				return err
			}
			if written == 0 {
				return io.ErrShortWrite
			}
			p = p[written:]
		}
		frames -= n
	}
	return nil
}
