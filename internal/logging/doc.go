// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// Loggers are plain *slog.Logger values tagged with a module attribute. Output
// is routed automatically:
//   - to the systemd journal when journald is reachable
//   - to stdout when a terminal, pipe, or file is connected
//   - always to an in-memory ring buffer served by GET /api/logs
//
// # Usage
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"dynload":       "debug",
//			"backend.pulse": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("backend.alsa")
//	logger.Warn("Failed to open device", "device", "hw:0,0", "error", err)
//
// Library load and symbol resolution failures are logged by the dynload module
// at warn level, one line per failure:
//
//	level=WARN msg="Failed to load library" module=dynload library=libpulse-simple.so.0 error="..."
//	level=WARN msg="Failed to load function" module=dynload function=pa_simple_new library=libpulse-simple.so.0
//
// # Runtime Level Changes
//
// SetLevels adjusts levels of loggers already handed out. The serve command
// calls it when the config file changes.
//
// # Viewing Logs
//
//	journalctl -t soundnode
//	journalctl -t soundnode MODULE=dynload
//	journalctl -t soundnode -p warning
//
// # Configuration
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	dynload = "debug"
package logging
