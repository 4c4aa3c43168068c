package pulse

import (
	"sync"
	"time"
	"unsafe"

	"github.com/smazurov/soundnode/internal/backend"
)

type device struct {
	id   string
	api  *api
	name string
	dir  backend.Direction
	cfg  backend.DeviceConfig

	mu     sync.Mutex
	s      uintptr
	closed bool
}

func (d *device) ID() string                   { return d.id }
func (d *device) Name() string                 { return d.name }
func (d *device) Direction() backend.Direction { return d.dir }
func (d *device) Config() backend.DeviceConfig { return d.cfg }

func (d *device) Write(p []byte) (int, error) {
	if d.dir != backend.Playback {
		return 0, backend.ErrUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	var code int32
	if d.api.simpleWrite(d.s, unsafe.Pointer(&p[0]), uintptr(len(p)), &code) < 0 {
		return 0, d.api.error("pa_simple_write", code)
	}
	return len(p), nil
}

func (d *device) Read(p []byte) (int, error) {
	if d.dir != backend.Capture {
		return 0, backend.ErrUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	var code int32
	if d.api.simpleRead(d.s, unsafe.Pointer(&p[0]), uintptr(len(p)), &code) < 0 {
		return 0, d.api.error("pa_simple_read", code)
	}
	return len(p), nil
}

// Latency reports the server-side delay of the stream.
func (d *device) Latency() (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	var code int32
	usec := d.api.simpleGetLatency(d.s, &code)
	if usec == ^uint64(0) {
		return 0, d.api.error("pa_simple_get_latency", code)
	}
	return time.Duration(usec) * time.Microsecond, nil
}

// Close drains playback or discards pending capture data, then frees the
// stream.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var code int32
	var err error
	if d.dir == backend.Playback {
		if d.api.simpleDrain(d.s, &code) < 0 {
			err = d.api.error("pa_simple_drain", code)
		}
	} else if d.api.simpleFlush(d.s, &code) < 0 {
		err = d.api.error("pa_simple_flush", code)
	}
	d.api.simpleFree(d.s)
	d.s = 0
	return err
}
