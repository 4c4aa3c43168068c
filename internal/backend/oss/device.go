package oss

import (
	"errors"
	"sync"

	"github.com/smazurov/soundnode/internal/backend"
)

type device struct {
	id  string
	dir backend.Direction
	cfg backend.DeviceConfig

	mu     sync.Mutex
	fd     int
	closed bool
}

func (d *device) ID() string                   { return d.id }
func (d *device) Name() string                 { return d.cfg.Name }
func (d *device) Direction() backend.Direction { return d.dir }
func (d *device) Config() backend.DeviceConfig { return d.cfg }

// Write blocks until all of p has been handed to the driver.
func (d *device) Write(p []byte) (int, error) {
	if d.dir != backend.Playback {
		return 0, backend.ErrUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	written := 0
	for written < len(p) {
		n, err := writeFD(d.fd, p[written:])
		if errors.Is(err, errInterrupted) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Read returns as soon as the driver delivered some frames.
func (d *device) Read(p []byte) (int, error) {
	if d.dir != backend.Capture {
		return 0, backend.ErrUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, backend.ErrDeviceClosed
	}

	for {
		n, err := readFD(d.fd, p)
		if errors.Is(err, errInterrupted) {
			continue
		}
		return n, err
	}
}

// Close waits for queued playback to finish, or discards pending capture
// data, and closes the node.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.dir == backend.Playback {
		_ = ioctl(d.fd, sndctlDSPSync, nil)
	} else {
		_ = ioctl(d.fd, sndctlDSPReset, nil)
	}
	return closeFD(d.fd)
}
