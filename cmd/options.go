// Package cmd holds the soundnode subcommands and the options they share
// with the server.
package cmd

import (
	"github.com/smazurov/soundnode/internal/backend/alsa"
	"github.com/smazurov/soundnode/internal/backend/oss"
	"github.com/smazurov/soundnode/internal/backend/pulse"
	"github.com/smazurov/soundnode/internal/dbuswrap"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/selector"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"soundnode.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`

	// Backend selection
	BackendsOrder string `help:"Comma separated backend order, -name disables, trailing comma keeps the rest" default:"" toml:"backends.order" env:"BACKENDS_ORDER"`

	// Backend settings
	PulseLibrary string `help:"PulseAudio simple API library" default:"libpulse-simple.so.0" toml:"pulse.library" env:"PULSE_LIBRARY"`
	PulseServer  string `help:"PulseAudio server address, empty for the default" default:"" toml:"pulse.server" env:"PULSE_SERVER"`
	AlsaDevRoot  string `help:"ALSA device directory" default:"/dev/snd" toml:"alsa.dev_root" env:"ALSA_DEV_ROOT"`
	OSSDevice    string `help:"OSS playback node" default:"/dev/dsp" toml:"oss.device" env:"OSS_DEVICE"`
	OSSCapture   string `help:"OSS capture node" default:"/dev/dsp" toml:"oss.capture" env:"OSS_CAPTURE"`

	// Realtime scheduling
	DBusLibrary  string `help:"libdbus library used for RealtimeKit" default:"libdbus-1.so.3" toml:"dbus.library" env:"DBUS_LIBRARY"`
	RTKitEnabled bool   `help:"Ask RealtimeKit for realtime priority on audio threads" default:"true" toml:"rtkit.enabled" env:"RTKIT_ENABLED"`

	// Device watching
	DevRoot string `help:"Device directory watched for sound nodes" default:"/dev" toml:"devices.root" env:"DEVICES_ROOT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDynload  string `help:"Library loading logging level" default:"" toml:"logging.dynload" env:"LOGGING_DYNLOAD"`
	LoggingBackend  string `help:"Backend logging level" default:"" toml:"logging.backend" env:"LOGGING_BACKEND"`
	LoggingSelector string `help:"Backend selection logging level" default:"" toml:"logging.selector" env:"LOGGING_SELECTOR"`
	LoggingDevwatch string `help:"Device watcher logging level" default:"" toml:"logging.devwatch" env:"LOGGING_DEVWATCH"`
	LoggingAPI      string `help:"API logging level" default:"" toml:"logging.api" env:"LOGGING_API"`
}

// LoggingConfig builds the logging configuration. Empty module levels
// inherit the global level.
func (o *Options) LoggingConfig() logging.Config {
	modules := make(map[string]string)
	for name, level := range map[string]string{
		"dynload":  o.LoggingDynload,
		"backend":  o.LoggingBackend,
		"selector": o.LoggingSelector,
		"devwatch": o.LoggingDevwatch,
		"api":      o.LoggingAPI,
	} {
		if level != "" {
			modules[name] = level
		}
	}
	return logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Modules: modules,
	}
}

// ConfigureBackends hands the backend settings to their packages. It must
// run before the first backend is initialized.
func (o *Options) ConfigureBackends() {
	pulse.Configure(pulse.Settings{Library: o.PulseLibrary, Server: o.PulseServer})
	alsa.Configure(alsa.Settings{DevRoot: o.AlsaDevRoot})
	oss.Configure(oss.Settings{Playback: o.OSSDevice, Capture: o.OSSCapture})
	dbuswrap.Configure(o.DBusLibrary)
}

// Order returns the parsed backend order.
func (o *Options) Order() []string {
	return selector.ParseOrder(o.BackendsOrder)
}
