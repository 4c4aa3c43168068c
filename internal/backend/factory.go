// Package backend defines the contract every audio backend implements and
// the process-wide, lazily constructed factory singletons behind it.
package backend

import "sync"

// Factory negotiates capabilities and builds devices for one backend kind.
type Factory interface {
	// Init performs one-time setup. It reports false when the backend cannot
	// be used on this machine. Later calls return the first result and never
	// retry.
	Init() bool

	// QuerySupport reports whether dir is available. It is false until Init
	// succeeded.
	QuerySupport(dir Direction) bool

	// Probe lists devices of the requested kind. An empty slice means no
	// devices and is not an error. The order is stable between calls as long
	// as the hardware does not change.
	Probe(kind ProbeKind) []string

	// CreateDevice opens a device bound to this backend. Failures to open the
	// underlying OS resource unwrap to ErrDeviceUnavailable.
	CreateDevice(cfg DeviceConfig, dir Direction) (Device, error)
}

// Descriptor identifies a backend kind and owns its Factory for the
// lifetime of the process. The factory is built on first access.
type Descriptor struct {
	kind       Kind
	newFactory func() Factory

	once    sync.Once
	factory Factory

	initOnce sync.Once
}

// NewDescriptor returns a descriptor that builds its factory with newFactory
// exactly once.
func NewDescriptor(kind Kind, newFactory func() Factory) *Descriptor {
	return &Descriptor{
		kind:       kind,
		newFactory: newFactory,
	}
}

// Kind returns the backend kind.
func (d *Descriptor) Kind() Kind {
	return d.kind
}

// Name returns the configuration name of the backend.
func (d *Descriptor) Name() string {
	return string(d.kind)
}

// Factory returns the singleton factory, constructing it on first call.
// Concurrent first callers all observe the same fully built instance.
func (d *Descriptor) Factory() Factory {
	d.once.Do(func() {
		d.factory = d.newFactory()
	})
	return d.factory
}

// Init initializes the factory and reports whether this call made the first
// attempt. Concurrent callers wait for that attempt, and exactly one of them
// sees first == true.
func (d *Descriptor) Init() (ready, first bool) {
	f := d.Factory()
	d.initOnce.Do(func() {
		first = StateOf(f) == StateUninitialized
		ready = f.Init()
	})
	if !first {
		ready = f.Init()
	}
	return ready, first
}
