//go:build oto

package oto

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/logging"
)

// Enabled reports whether the backend was compiled in.
const Enabled = true

type factory struct {
	backend.Lifecycle
	logger *slog.Logger
	// available checks that the platform output can be reached at all.
	available func() bool

	// oto allows a single context per process; its format is fixed by the
	// first device.
	mu     sync.Mutex
	ctx    *oto.Context
	format backend.DeviceConfig
}

func newFactory() *factory {
	logger := logging.GetLogger("backend.oto")
	return &factory{logger: logger, available: systemOutput(logger)}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(func() bool {
		if !f.available() {
			f.logger.Info("No audio output reachable for oto")
			return false
		}
		return true
	})
}

func (f *factory) QuerySupport(dir backend.Direction) bool {
	return f.Ready() && dir == backend.Playback
}

func (f *factory) Probe(kind backend.ProbeKind) []string {
	if !f.QuerySupport(kind.Direction()) {
		return []string{}
	}
	return []string{DefaultDeviceName}
}

func otoFormat(f backend.SampleFormat) (oto.Format, bool) {
	switch f {
	case backend.FormatS16:
		return oto.FormatSignedInt16LE, true
	case backend.FormatU8:
		return oto.FormatUnsignedInt8, true
	case backend.FormatFloat32:
		return oto.FormatFloat32LE, true
	default:
		return 0, false
	}
}

func (f *factory) context(cfg backend.DeviceConfig) (*oto.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ctx != nil {
		if f.format.SampleRate != cfg.SampleRate || f.format.Channels != cfg.Channels || f.format.Format != cfg.Format {
			return nil, fmt.Errorf("context fixed at %dHz %dch %s", f.format.SampleRate, f.format.Channels, f.format.Format)
		}
		return f.ctx, nil
	}

	format, ok := otoFormat(cfg.Format)
	if !ok {
		return nil, fmt.Errorf("format %s: %w", cfg.Format, backend.ErrUnsupported)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	f.ctx = ctx
	f.format = cfg
	f.logger.Info("Oto context ready", "rate", cfg.SampleRate, "channels", cfg.Channels, "format", cfg.Format)
	return ctx, nil
}

func (f *factory) CreateDevice(cfg backend.DeviceConfig, dir backend.Direction) (backend.Device, error) {
	if err := f.Require(); err != nil {
		return nil, err
	}
	if dir != backend.Playback {
		return nil, backend.ErrUnsupported
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, err := f.context(cfg)
	if err != nil {
		return nil, backend.NewDeviceError(backend.KindOto, DefaultDeviceName, "open", err)
	}

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	if cfg.BufferSize > 0 {
		player.SetBufferSize(cfg.BufferSize * cfg.FrameSize())
	}
	player.Play()

	cfg.Name = DefaultDeviceName
	return &device{
		id:     backend.NewDeviceID(),
		cfg:    cfg,
		player: player,
		pr:     pr,
		pw:     pw,
	}, nil
}

type device struct {
	id     string
	cfg    backend.DeviceConfig
	player *oto.Player
	pr     *io.PipeReader
	pw     *io.PipeWriter

	closeOnce sync.Once
}

func (d *device) ID() string                   { return d.id }
func (d *device) Name() string                 { return d.cfg.Name }
func (d *device) Direction() backend.Direction { return backend.Playback }
func (d *device) Config() backend.DeviceConfig { return d.cfg }

// Write blocks until the player has pulled all of p.
func (d *device) Write(p []byte) (int, error) {
	n, err := d.pw.Write(p)
	if err == io.ErrClosedPipe {
		return n, backend.ErrDeviceClosed
	}
	return n, err
}

func (d *device) Read([]byte) (int, error) {
	return 0, backend.ErrUnsupported
}

func (d *device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.pw.Close()
		err = d.player.Close()
		d.pr.Close()
	})
	return err
}
