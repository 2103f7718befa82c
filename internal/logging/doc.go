// Package logging hands out per-module slog loggers whose levels can be
// changed while the process runs.
//
// Each module gets one cached *slog.Logger tagged with module=<name> and
// backed by its own slog.LevelVar. Calling Initialize again, for example
// after the settings file changes, updates those LevelVars in place, so
// a bridge that captured its logger at launch sees the new level without
// being reopened.
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Output:  "stderr",
//		Modules: map[string]string{"bridge": "debug", "dialog": "warn"},
//	})
//
//	logger := logging.GetLogger("bridge").With("session_id", id)
//	logger.Info("Bridge opened", "pid", pid)
//
// Modules used by this repository:
//
//	bridge  - session lifecycle, handshake transitions, pushes
//	dialog  - RUBY2D diagnostic lines relayed from the dialog process
//	process - spawning and stopping the dialog child
//	config  - settings file loading and reloads
//
// # Outputs
//
// Records go to stdout, or stderr when Output is "stderr", and also to
// the systemd journal when journald is reachable. The dialog subcommand
// always logs to stderr because its stdout carries the command protocol.
//
// Journal entries use SyslogIdentifier and expose attributes as fields:
//
//	journalctl -t progressbridge MODULE=bridge
//	journalctl -t progressbridge SESSION_ID=3f2c... -p warning
//
// # Configuration
//
//	[logging]
//	level = "info"
//	format = "json"
//
//	[logging.modules]
//	bridge = "debug"
package logging
