// Package selector walks a configured backend order and initializes
// backends until one is usable.
package selector

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/events"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/metrics"
)

var (
	// ErrNoBackend means no enabled backend initialized.
	ErrNoBackend = errors.New("no audio backend available")
	// ErrUnknownBackend means a requested name is not registered.
	ErrUnknownBackend = errors.New("unknown audio backend")
)

// Selector chooses backends from a registry in a configured order.
type Selector struct {
	registry []*backend.Descriptor
	order    []*backend.Descriptor
	bus      *events.Bus
	logger   *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithEventBus publishes init, probe and open events on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(s *Selector) {
		s.bus = bus
	}
}

// New builds a selector over registry, which also defines the default order.
// order follows ParseOrder semantics; nil keeps the default.
func New(registry []*backend.Descriptor, order []string, opts ...Option) *Selector {
	s := &Selector{
		registry: registry,
		logger:   logging.GetLogger("selector"),
	}
	for _, opt := range opts {
		opt(s)
	}

	resolved, unknown := resolveOrder(registry, order)
	for _, name := range unknown {
		s.logger.Warn("Ignoring unknown backend in order", "backend", name)
	}
	s.order = resolved
	return s
}

// Order returns the names of the enabled backends in selection order.
func (s *Selector) Order() []string {
	names := make([]string, len(s.order))
	for i, d := range s.order {
		names[i] = d.Name()
	}
	return names
}

// Lookup finds a registered backend by name, enabled or not.
func (s *Selector) Lookup(name string) (*backend.Descriptor, bool) {
	for _, d := range s.registry {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Select initializes the named backend, or with an empty name the first
// backend in order that initializes.
func (s *Selector) Select(name string) (*Selection, error) {
	if name != "" {
		d, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
		}
		if !s.initialize(d) {
			return nil, fmt.Errorf("%w: %s failed to initialize", ErrNoBackend, name)
		}
		return s.selection(d), nil
	}

	for _, d := range s.order {
		if s.initialize(d) {
			s.logger.Info("Selected audio backend", "backend", d.Name())
			return s.selection(d), nil
		}
	}
	return nil, ErrNoBackend
}

func (s *Selector) selection(d *backend.Descriptor) *Selection {
	return &Selection{desc: d, factory: d.Factory(), sel: s}
}

// initialize runs Init once per backend. Only the call that made the
// attempt records it.
func (s *Selector) initialize(d *backend.Descriptor) bool {
	start := time.Now()
	ready, first := d.Init()
	if !first {
		return ready
	}

	metrics.RecordBackendInit(d.Name(), ready)
	if ready {
		s.logger.Debug("Backend initialized", "backend", d.Name(), "duration", time.Since(start))
	} else {
		s.logger.Info("Backend unavailable", "backend", d.Name())
	}
	s.publish(events.BackendInitEvent{
		Backend:   d.Name(),
		Ready:     ready,
		Timestamp: timestamp(),
	})
	return ready
}

func (s *Selector) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// Status summarizes one backend.
type Status struct {
	Name     string   `json:"name" example:"alsa" doc:"Backend name"`
	State    string   `json:"state" example:"ready" doc:"uninitialized, ready or failed"`
	Ready    bool     `json:"ready" doc:"Whether the backend initialized"`
	Playback bool     `json:"playback" doc:"Playback supported"`
	Capture  bool     `json:"capture" doc:"Capture supported"`
	Outputs  []string `json:"outputs" doc:"Playback devices in probe order"`
	Captures []string `json:"captures" doc:"Capture devices in probe order"`
}

// Report initializes every enabled backend and probes the ready ones.
func (s *Selector) Report() []Status {
	statuses := make([]Status, 0, len(s.order))
	for _, d := range s.order {
		st, _ := s.Status(d.Name())
		statuses = append(statuses, st)
	}
	return statuses
}

// Status initializes and probes one registered backend.
func (s *Selector) Status(name string) (Status, error) {
	d, ok := s.Lookup(name)
	if !ok {
		return Status{}, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	ready := s.initialize(d)
	sel := s.selection(d)
	st := Status{
		Name:     d.Name(),
		State:    backend.StateOf(sel.factory).String(),
		Ready:    ready,
		Playback: sel.factory.QuerySupport(backend.Playback),
		Capture:  sel.factory.QuerySupport(backend.Capture),
		Outputs:  []string{},
		Captures: []string{},
	}
	if st.Playback {
		st.Outputs = sel.Probe(backend.OutputDevices)
	}
	if st.Capture {
		st.Captures = sel.Probe(backend.CaptureDevices)
	}
	return st, nil
}

// Refresh re-probes every enabled backend that is already ready. Backends
// are never initialized or switched here.
func (s *Selector) Refresh() {
	for _, d := range s.order {
		f := d.Factory()
		if backend.StateOf(f) != backend.StateReady {
			continue
		}
		sel := s.selection(d)
		for _, kind := range []backend.ProbeKind{backend.OutputDevices, backend.CaptureDevices} {
			if f.QuerySupport(kind.Direction()) {
				sel.Probe(kind)
			}
		}
	}
}

// Selection is an initialized backend.
type Selection struct {
	desc    *backend.Descriptor
	factory backend.Factory
	sel     *Selector
}

// Name returns the backend name.
func (s *Selection) Name() string {
	return s.desc.Name()
}

// Factory returns the backend factory.
func (s *Selection) Factory() backend.Factory {
	return s.factory
}

// Probe lists devices and records the count.
func (s *Selection) Probe(kind backend.ProbeKind) []string {
	devices := s.factory.Probe(kind)
	metrics.SetBackendDevices(s.Name(), kind.String(), len(devices))
	s.sel.publish(events.DevicesProbedEvent{
		Backend:   s.Name(),
		Kind:      kind.String(),
		Devices:   devices,
		Timestamp: timestamp(),
	})
	return devices
}

// OpenDevice creates a device and records the outcome.
func (s *Selection) OpenDevice(cfg backend.DeviceConfig, dir backend.Direction) (backend.Device, error) {
	dev, err := s.factory.CreateDevice(cfg, dir)
	metrics.RecordDeviceOpen(s.Name(), err)

	ev := events.DeviceOpenedEvent{
		Backend:   s.Name(),
		Name:      cfg.Name,
		Direction: dir.String(),
		Timestamp: timestamp(),
	}
	if err != nil {
		ev.Error = err.Error()
		s.sel.logger.Warn("Failed to open device", "backend", s.Name(), "device", cfg.Name, "direction", dir, "error", err)
	} else {
		ev.DeviceID = dev.ID()
		ev.Name = dev.Name()
		s.sel.logger.Info("Opened device", "backend", s.Name(), "device", dev.Name(), "direction", dir, "id", dev.ID())
	}
	s.sel.publish(ev)
	return dev, err
}

// Devices initializes the named backend and probes it.
func (s *Selector) Devices(name string, kind backend.ProbeKind) ([]string, error) {
	d, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if !s.initialize(d) {
		return nil, fmt.Errorf("%w: %s failed to initialize", ErrNoBackend, name)
	}
	return s.selection(d).Probe(kind), nil
}
