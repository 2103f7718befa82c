package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/progressbridge/cmd"
	"github.com/smazurov/progressbridge/internal/api"
	"github.com/smazurov/progressbridge/internal/bridge"
	"github.com/smazurov/progressbridge/internal/config"
	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/process"
	"github.com/smazurov/progressbridge/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Bridge settings
	LaunchTarget      string `help:"Dialog command line (default: this program's dialog command)" toml:"bridge.launch_target" env:"BRIDGE_LAUNCH_TARGET"`
	UpdateIntervalMs  int    `help:"Minimum milliseconds between progress updates" default:"100" toml:"bridge.update_interval_ms" env:"BRIDGE_UPDATE_INTERVAL_MS"`
	GracefulTimeoutMs int    `help:"Milliseconds to wait for the dialog to exit before killing it" default:"2000" toml:"bridge.graceful_timeout_ms" env:"BRIDGE_GRACEFUL_TIMEOUT_MS"`
	LockFile          string `help:"Lock file preventing concurrent dialogs across processes" toml:"bridge.lock_file" env:"BRIDGE_LOCK_FILE"`

	// Demo settings
	Items       int  `help:"Number of work items to simulate" default:"1000" toml:"demo.items" env:"DEMO_ITEMS"`
	WorkDelayMs int  `help:"Simulated milliseconds of work per item" default:"5" toml:"demo.work_delay_ms" env:"DEMO_WORK_DELAY_MS"`
	Headless    bool `help:"Run the default dialog without drawing on the terminal" toml:"demo.headless" env:"DEMO_HEADLESS"`
	CancelAfter int  `help:"Make the default dialog cancel after this many updates" toml:"demo.cancel_after" env:"DEMO_CANCEL_AFTER"`

	// Status API settings
	Listen string `help:"Address for the status API, event stream and /metrics (empty disables)" toml:"api.listen" env:"API_LISTEN"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingOutput  string `help:"Logging output (stderr, stdout)" default:"stderr" toml:"logging.output" env:"LOGGING_OUTPUT"`
	LoggingBridge  string `help:"Bridge logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingDialog  string `help:"Dialog diagnostics logging level" default:"info" toml:"logging.dialog" env:"LOGGING_DIALOG"`
	LoggingProcess string `help:"Subprocess logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Output: o.LoggingOutput,
		Modules: map[string]string{
			"bridge":  o.LoggingBridge,
			"dialog":  o.LoggingDialog,
			"process": o.LoggingProcess,
		},
	}
}

// launchTarget returns the configured dialog, or this executable's dialog
// command.
func (o *Options) launchTarget() (string, error) {
	if o.LaunchTarget != "" {
		return o.LaunchTarget, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return defaultLaunchTarget(exe, o.Headless, o.CancelAfter), nil
}

func defaultLaunchTarget(exe string, headless bool, cancelAfter int) string {
	target := process.QuoteArg(exe) + " dialog"
	if headless {
		target += " --headless"
	}
	if cancelAfter > 0 {
		target += " --cancel-after " + strconv.Itoa(cancelAfter)
	}
	return target
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("config").Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		notifier := systemd.NewNotifier(logging.GetLogger("systemd"))

		hooks.OnStart(func() {
			defer close(finished)

			target, err := opts.launchTarget()
			if err != nil {
				logger.Error("Failed to resolve dialog command", "error", err)
				os.Exit(1)
			}

			eventBus := events.New()
			var apiServer *api.Server
			if opts.Listen != "" {
				apiServer = startAPIServer(opts.Listen, eventBus, registry, logger)
				defer apiServer.Stop()
			}

			defer notifier.Follow(eventBus)()
			defer events.Subscribe(eventBus, func(e events.SessionClosedEvent) {
				logger.Debug("Dialog session ended", "session_id", e.SessionID, "state", e.State, "exit_code", e.ExitCode)
			})()

			if opts.Config != "" {
				if _, statErr := os.Stat(opts.Config); statErr == nil {
					watcher := newSettingsWatcher(opts, logger)
					if startErr := watcher.Start(); startErr != nil {
						logger.Warn("Failed to watch config", "error", startErr)
					} else {
						defer watcher.Stop()
					}
				}
			}

			notifier.Ready()

			d := &demo{
				items:     opts.Items,
				workDelay: time.Duration(opts.WorkDelayMs) * time.Millisecond,
				logger:    logger,
				out:       os.Stdout,
			}
			bridgeOpts := &bridge.Options{
				LaunchTarget:    target,
				UpdateInterval:  time.Duration(opts.UpdateIntervalMs) * time.Millisecond,
				GracefulTimeout: time.Duration(opts.GracefulTimeoutMs) * time.Millisecond,
				LockFile:        opts.LockFile,
				EventBus:        eventBus,
				Metrics:         bridge.NewMetrics(registry),
			}

			if runErr := d.run(ctx, bridgeOpts); runErr != nil {
				logger.Error("Demo failed", "error", runErr)
				apiServer.Stop()
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()
			cancel()
			select {
			case <-finished:
			case <-time.After(time.Duration(opts.GracefulTimeoutMs)*time.Millisecond + time.Second):
				logger.Warn("Demo did not stop in time")
			}
		})
	})

	cli.Root().Use = "progressbridge"
	cli.Root().Short = "Run a long computation with a cancellable progress dialog"

	cli.Root().AddCommand(cmd.CreateDialogCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}

// newSettingsWatcher reloads log levels and the update interval when the
// config file changes.
func newSettingsWatcher(opts *Options, logger logging.Logger) *config.Watcher[config.Settings] {
	watcher := config.NewConfigWatcher(opts.Config, config.LoadSettings, logging.GetLogger("config"))
	watcher.OnReload(func(s config.Settings) {
		if s.Logging.Output == "" {
			s.Logging.Output = opts.LoggingOutput
		}
		logging.Initialize(s.Logging)
		if b := bridge.SharedGuard().Active(); b != nil {
			b.SetUpdateInterval(s.Bridge.UpdateInterval())
		}
		logger.Info("Applied config changes", "level", s.Logging.Level, "update_interval", s.Bridge.UpdateInterval())
	})
	return watcher
}

func startAPIServer(addr string, bus *events.Bus, registry *prometheus.Registry, logger logging.Logger) *api.Server {
	server := api.NewServer(&api.Options{
		EventBus:       bus,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	go func() {
		if err := server.Start(addr); err != nil {
			logger.Error("Status API failed", "error", err)
		}
	}()
	return server
}
