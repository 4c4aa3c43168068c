package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/soundnode/cmd"
	"github.com/smazurov/soundnode/internal/api"
	"github.com/smazurov/soundnode/internal/config"
	"github.com/smazurov/soundnode/internal/devwatch"
	"github.com/smazurov/soundnode/internal/events"
	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/metrics/collectors"
	"github.com/smazurov/soundnode/internal/metrics/exporters"
	"github.com/smazurov/soundnode/internal/selector"
	"github.com/smazurov/soundnode/internal/systemd"
)

// daemon holds everything the server starts and must stop.
type daemon struct {
	logger    *slog.Logger
	cancel    context.CancelFunc
	server    *api.Server
	devices   *devwatch.Watcher
	asound    *collectors.AsoundCollector
	cfgWatch  *config.Watcher[logging.Config]
	systemd   *systemd.Manager
	unsubRefs []func()
}

func newDaemon(opts *cmd.Options) *daemon {
	ctx, cancel := context.WithCancel(context.Background())
	d := &daemon{
		logger: logging.GetLogger("main"),
		cancel: cancel,
	}

	eventBus := events.New()
	sel := selector.New(selector.DefaultRegistry(), opts.Order(), selector.WithEventBus(eventBus))
	d.logger.Info("Backend order", "backends", sel.Order())

	apiOpts := &api.Options{
		AuthUsername:      opts.AuthUsername,
		AuthPassword:      opts.AuthPassword,
		Backends:          sel,
		EventBus:          eventBus,
		PrometheusHandler: exporters.HTTPHandler(),
	}

	// The user bus is absent on headless systems; the sound server routes
	// are then not registered.
	if mgr, err := systemd.NewManager(ctx); err != nil {
		d.logger.Info("systemd user bus unavailable", "error", err)
	} else {
		d.systemd = mgr
		apiOpts.SoundServers = mgr
	}
	d.server = api.NewServer(apiOpts)

	// Hotplug only refreshes the device lists of backends already in use.
	d.devices = devwatch.New(eventBus,
		devwatch.WithRoot(opts.DevRoot),
		devwatch.WithFlushHandler(sel.Refresh),
	)

	d.asound = collectors.NewAsoundCollector()
	if err := d.asound.Start(ctx); err != nil {
		d.logger.Info("ALSA metrics disabled", "error", err)
	}

	if _, err := os.Stat(opts.Config); err == nil {
		d.cfgWatch = config.NewConfigWatcher(opts.Config, config.ReadLoggingConfig, logging.GetLogger("config"))
		d.unsubRefs = append(d.unsubRefs, d.cfgWatch.OnReload(func(c logging.Config) {
			logging.SetLevels(c.Level, c.Modules)
		}))
	}

	// Initialize every enabled backend up front so the first API request
	// does not pay for library loading.
	for _, st := range sel.Report() {
		d.logger.Info("Backend status", "backend", st.Name, "state", st.State,
			"outputs", len(st.Outputs), "captures", len(st.Captures))
	}
	return d
}

func (d *daemon) start(port string) {
	if err := d.devices.Start(); err != nil {
		d.logger.Warn("Device watcher disabled", "error", err)
	}
	if d.cfgWatch != nil {
		if err := d.cfgWatch.Start(); err != nil {
			d.logger.Warn("Config watcher disabled", "error", err)
		}
	}

	d.logger.Info("Starting HTTP server", "port", port)
	if err := d.server.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		d.logger.Error("Failed to start HTTP server", "error", err)
		os.Exit(1)
	}
}

func (d *daemon) stop() {
	d.logger.Info("Shutting down server")
	if err := d.server.Stop(); err != nil {
		d.logger.Error("Error stopping HTTP server", "error", err)
	}
	for _, unsub := range d.unsubRefs {
		unsub()
	}
	if d.cfgWatch != nil {
		d.cfgWatch.Stop()
	}
	d.devices.Stop()
	d.asound.Stop()
	if d.systemd != nil {
		d.systemd.Close()
	}
	d.cancel()
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *cmd.Options) {
		if err := config.LoadConfig(opts, cli.Root()); err != nil {
			slog.Warn("Failed to load config", "error", err)
		}
		logging.Initialize(opts.LoggingConfig())
		opts.ConfigureBackends()

		// OnStop runs on the signal goroutine while OnStart blocks.
		var running atomic.Pointer[daemon]
		hooks.OnStart(func() {
			d := newDaemon(opts)
			running.Store(d)
			d.start(opts.Port)
		})
		hooks.OnStop(func() {
			if d := running.Load(); d != nil {
				d.stop()
			}
		})
	})

	cli.Root().Use = "soundnode"
	cli.Root().Short = "Audio backend discovery and diagnostics"
	cli.Root().AddCommand(cmd.CreateProbeCmd())
	cli.Root().AddCommand(cmd.CreateToneCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}
