// Package pulse plays and captures through a PulseAudio (or pipewire-pulse)
// server using libpulse-simple, bound at runtime.
package pulse

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/systemd"
	"github.com/smazurov/soundnode/pkg/dynload"
)

// DefaultDeviceName is the only probe entry; it routes to the server default.
const DefaultDeviceName = "PulseAudio Default"

// DefaultLibrary is the soname of the simple API.
const DefaultLibrary = "libpulse-simple.so.0"

// Settings configure the backend. They are read when the factory is built.
type Settings struct {
	Library string // shared library to bind
	Server  string // server address, empty for the default
	AppName string // client name shown by the server
}

func (s Settings) withDefaults() Settings {
	if s.Library == "" {
		s.Library = DefaultLibrary
	}
	if s.AppName == "" {
		s.AppName = "soundnode"
	}
	return s
}

var settings atomic.Pointer[Settings]

// Configure stores settings for the factory. Call it before GetFactory.
func Configure(s Settings) {
	settings.Store(&s)
}

func currentSettings() Settings {
	if s := settings.Load(); s != nil {
		return s.withDefaults()
	}
	return Settings{}.withDefaults()
}

var descriptor = backend.NewDescriptor(backend.KindPulse, func() backend.Factory {
	return newFactory(currentSettings())
})

// Descriptor returns the PulseAudio backend descriptor.
func Descriptor() *backend.Descriptor {
	return descriptor
}

// GetFactory returns the process-wide PulseAudio factory.
func GetFactory() backend.Factory {
	return descriptor.Factory()
}

// diagnoser reports sound server units when the server cannot be reached.
type diagnoser func(ctx context.Context) []systemd.UnitStatus

type factory struct {
	backend.Lifecycle

	settings Settings
	logger   *slog.Logger
	libOpts  []dynload.LibraryOption
	diagnose diagnoser
	api      *api
}

func newFactory(s Settings, libOpts ...dynload.LibraryOption) *factory {
	return &factory{
		settings: s,
		logger:   logging.GetLogger("backend.pulse"),
		libOpts:  libOpts,
		diagnose: soundServerStatus,
	}
}

func (f *factory) Init() bool {
	return f.Lifecycle.Init(f.setup)
}

func (f *factory) setup() bool {
	f.api = newAPI(f.settings.Library, f.libOpts...)
	if !f.api.lib.Prepare() {
		return false
	}

	// A test connection tells an installed client library apart from a
	// running server.
	s, err := f.api.connect(f.settings.Server, f.settings.AppName, "", backend.DefaultDeviceConfig(), backend.Playback)
	if err != nil {
		f.logger.Warn("Failed to connect to PulseAudio server", "server", f.settings.Server, "error", err)
		f.reportSoundServer()
		return false
	}
	f.api.simpleFree(s)
	f.logger.Debug("PulseAudio server reachable", "server", f.settings.Server)
	return true
}

func (f *factory) reportSoundServer() {
	if f.diagnose == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	statuses := f.diagnose(ctx)
	if len(statuses) == 0 {
		return
	}
	var states []string
	for _, st := range statuses {
		if st.Active() {
			f.logger.Info("Sound server unit is active but not accepting connections", "unit", st.Unit)
			return
		}
		state := st.State
		if state == "" {
			state = "unknown"
		}
		states = append(states, st.Unit+"="+state)
	}
	f.logger.Warn("No sound server unit is active", "units", strings.Join(states, ","))
}

func soundServerStatus(ctx context.Context) []systemd.UnitStatus {
	m, err := systemd.NewManager(ctx)
	if err != nil {
		return nil
	}
	defer m.Close()
	return m.SoundServerStatus(ctx)
}

func (f *factory) QuerySupport(backend.Direction) bool {
	return f.Ready()
}

func (f *factory) Probe(backend.ProbeKind) []string {
	if !f.Ready() {
		return []string{}
	}
	return []string{DefaultDeviceName}
}

func (f *factory) CreateDevice(cfg backend.DeviceConfig, dir backend.Direction) (backend.Device, error) {
	if err := f.Require(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == DefaultDeviceName {
		name = ""
	}
	s, err := f.api.connect(f.settings.Server, f.settings.AppName, name, cfg, dir)
	if err != nil {
		return nil, backend.NewDeviceError(backend.KindPulse, displayName(name), "open", err)
	}

	cfg.Name = displayName(name)
	return &device{
		id:   backend.NewDeviceID(),
		api:  f.api,
		s:    s,
		dir:  dir,
		cfg:  cfg,
		name: cfg.Name,
	}, nil
}

func displayName(name string) string {
	if name == "" {
		return DefaultDeviceName
	}
	return name
}
