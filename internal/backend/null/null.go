// Package null is a playback backend that discards samples at the pace a
// real device would consume them.
package null

import (
	"sync"
	"time"

	"github.com/smazurov/soundnode/internal/backend"
)

// DefaultDeviceName is the only device.
const DefaultDeviceName = "No Output"

var descriptor = backend.NewDescriptor(backend.KindNull, func() backend.Factory {
	return newFactory()
})

// Descriptor returns the null backend descriptor.
func Descriptor() *backend.Descriptor {
	return descriptor
}

// GetFactory returns the process-wide null factory.
func GetFactory() backend.Factory {
	return descriptor.Factory()
}

type factory struct {
	backend.Lifecycle
	now   func() time.Time
	sleep func(time.Duration)
}

func newFactory() *factory {
	return &factory{now: time.Now, sleep: time.Sleep}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(func() bool { return true })
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
	if cfg.Name != "" && cfg.Name != DefaultDeviceName {
		return nil, backend.NewDeviceError(backend.KindNull, cfg.Name, "open", backend.ErrUnsupported)
	}
	cfg.Name = DefaultDeviceName

	return &device{
		id:    backend.NewDeviceID(),
		cfg:   cfg,
		now:   f.now,
		sleep: f.sleep,
		start: f.now(),
	}, nil
}

type device struct {
	id    string
	cfg   backend.DeviceConfig
	now   func() time.Time
	sleep func(time.Duration)

	mu     sync.Mutex
	start   time.Time
	written int64 // bytes, so split frames are counted once complete
	closed  bool
}

func (d *device) ID() string                   { return d.id }
func (d *device) Name() string                 { return d.cfg.Name }
func (d *device) Direction() backend.Direction { return backend.Playback }
func (d *device) Config() backend.DeviceConfig { return d.cfg }

// Write discards p and sleeps until the play position catches up with the
// frames written so far, less one buffer of headroom.
func (d *device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	d.written += int64(len(p))
	ahead := d.written/int64(d.cfg.FrameSize()) - int64(d.cfg.BufferSize)
	if ahead <= 0 {
		return len(p), nil
	}
	due := d.start.Add(time.Duration(ahead) * time.Second / time.Duration(d.cfg.SampleRate))
	if wait := due.Sub(d.now()); wait > 0 {
		d.sleep(wait)
	}
	return len(p), nil
}

func (d *device) Read([]byte) (int, error) {
	return 0, backend.ErrUnsupported
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
