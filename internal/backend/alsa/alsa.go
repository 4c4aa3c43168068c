// Package alsa drives sound cards through the ALSA kernel interface without
// libasound.
package alsa

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/pkg/linuxav/alsa"
)

// DefaultDeviceName opens the first device of the first card.
const DefaultDeviceName = "ALSA Default"

// DefaultDevRoot is where the kernel creates ALSA device nodes.
const DefaultDevRoot = "/dev/snd"

// Settings configure the backend. They are read when the factory is built.
type Settings struct {
	DevRoot string
}

var settings atomic.Pointer[Settings]

// Configure stores settings for the factory. Call it before GetFactory.
func Configure(s Settings) {
	settings.Store(&s)
}

func currentSettings() Settings {
	s := Settings{}
	if p := settings.Load(); p != nil {
		s = *p
	}
	if s.DevRoot == "" {
		s.DevRoot = DefaultDevRoot
	}
	return s
}

var descriptor = backend.NewDescriptor(backend.KindALSA, func() backend.Factory {
	return newFactory(currentSettings())
})

// Descriptor returns the ALSA backend descriptor.
func Descriptor() *backend.Descriptor {
	return descriptor
}

// GetFactory returns the process-wide ALSA factory.
func GetFactory() backend.Factory {
	return descriptor.Factory()
}

type factory struct {
	backend.Lifecycle

	root   string
	logger *slog.Logger
}

func newFactory(s Settings) *factory {
	return &factory{
		root:   s.DevRoot,
		logger: logging.GetLogger("backend.alsa"),
	}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(f.setup)
}

// setup succeeds when the device directory exists, even with no cards, so
// that a later probe can report an empty list.
func (f *factory) setup() bool {
	info, err := os.Stat(f.root)
	if err != nil {
		f.logger.Warn("ALSA device directory unavailable", "path", f.root, "error", err)
		return false
	}
	if !info.IsDir() {
		f.logger.Warn("ALSA device path is not a directory", "path", f.root)
		return false
	}
	if _, err := alsa.ListDevices(f.root, alsa.StreamPlayback); errors.Is(err, alsa.ErrUnsupported) {
		f.logger.Warn("ALSA is not supported on this platform")
		return false
	}
	return true
}

func (f *factory) QuerySupport(backend.Direction) bool {
	return f.Ready()
}

func stream(dir backend.Direction) alsa.Stream {
	if dir == backend.Capture {
		return alsa.StreamCapture
	}
	return alsa.StreamPlayback
}

// Probe lists "ALSA Default" followed by one entry per PCM device, or nothing
// when there are no devices.
func (f *factory) Probe(kind backend.ProbeKind) []string {
	names := []string{}
	if !f.Ready() {
		return names
	}

	devices, err := alsa.ListDevices(f.root, stream(kind.Direction()))
	if err != nil {
		f.logger.Warn("Failed to enumerate ALSA devices", "kind", kind, "error", err)
		return names
	}
	if len(devices) == 0 {
		return names
	}

	names = append(names, DefaultDeviceName)
	for _, dev := range devices {
		names = append(names, dev.Description())
	}
	return names
}

// resolve maps a probe entry, a bare "hw:X,Y" string or the default name to
// card and device numbers.
func (f *factory) resolve(name string, dir backend.Direction) (card, dev int, err error) {
	if name == "" || name == DefaultDeviceName {
		devices, err := alsa.ListDevices(f.root, stream(dir))
		if err != nil {
			return 0, 0, err
		}
		if len(devices) == 0 {
			return 0, 0, fmt.Errorf("no %s devices: %w", dir, fs.ErrNotExist)
		}
		return devices[0].CardNumber, devices[0].DeviceNumber, nil
	}

	hw := name
	if i := strings.LastIndex(name, "(hw:"); i >= 0 && strings.HasSuffix(name, ")") {
		hw = name[i+1 : len(name)-1]
	}
	return alsa.ParseALSADevice(hw)
}

func hwFormat(f backend.SampleFormat) int {
	switch f {
	case backend.FormatU8:
		return alsa.FormatU8
	case backend.FormatS32:
		return alsa.FormatS32LE
	case backend.FormatFloat32:
		return alsa.FormatFloatLE
	default:
		return alsa.FormatS16LE
	}
}

func (f *factory) CreateDevice(cfg backend.DeviceConfig, dir backend.Direction) (backend.Device, error) {
	if err := f.Require(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = DefaultDeviceName
	}
	card, dev, err := f.resolve(name, dir)
	if err != nil {
		return nil, backend.NewDeviceError(backend.KindALSA, name, "open", err)
	}

	pcm, err := alsa.OpenPCM(f.root, card, dev, stream(dir), alsa.HwConfig{
		Format:     hwFormat(cfg.Format),
		Channels:   cfg.Channels,
		Rate:       cfg.SampleRate,
		PeriodSize: cfg.UpdateSize,
		BufferSize: cfg.BufferSize,
	})
	if err != nil {
		return nil, backend.NewDeviceError(backend.KindALSA, alsa.FormatALSADevice(card, dev), "open", err)
	}

	hw := pcm.Config()
	cfg.Name = name
	cfg.Channels = hw.Channels
	cfg.SampleRate = hw.Rate
	cfg.UpdateSize = hw.PeriodSize
	cfg.BufferSize = hw.BufferSize

	f.logger.Debug("Opened ALSA device", "device", alsa.FormatALSADevice(card, dev),
		"direction", dir, "rate", hw.Rate, "channels", hw.Channels,
		"period", hw.PeriodSize, "buffer", hw.BufferSize)

	return &device{
		id:  backend.NewDeviceID(),
		pcm: pcm,
		dir: dir,
		cfg: cfg,
	}, nil
}

type device struct {
	id  string
	pcm *alsa.PCM
	dir backend.Direction
	cfg backend.DeviceConfig
}

func (d *device) ID() string                   { return d.id }
func (d *device) Name() string                 { return d.cfg.Name }
func (d *device) Direction() backend.Direction { return d.dir }
func (d *device) Config() backend.DeviceConfig { return d.cfg }

func (d *device) Write(p []byte) (int, error) {
	if d.dir != backend.Playback {
		return 0, backend.ErrUnsupported
	}
	n, err := d.pcm.Write(p)
	return n, deviceErr(err)
}

func (d *device) Read(p []byte) (int, error) {
	if d.dir != backend.Capture {
		return 0, backend.ErrUnsupported
	}
	n, err := d.pcm.Read(p)
	return n, deviceErr(err)
}

func (d *device) Close() error {
	return d.pcm.Close()
}

func deviceErr(err error) error {
	if errors.Is(err, alsa.ErrClosed) {
		return backend.ErrDeviceClosed
	}
	return err
}
