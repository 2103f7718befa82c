package bridge

import (
	"log/slog"
	"time"

	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/process"
)

const (
	// DefaultGracefulTimeout bounds how long Close waits for the dialog to exit.
	DefaultGracefulTimeout = 2 * time.Second

	// DefaultInboundBuffer is the capacity of the channel returned by Inbound.
	DefaultInboundBuffer = 256
)

// Options configures a session.
type Options struct {
	// LaunchTarget is the dialog command line, split with shell-like quoting.
	LaunchTarget string

	UpdateInterval  time.Duration
	GracefulTimeout time.Duration
	InboundBuffer   int

	// LockFile, when set, is locked for the session so a second process
	// cannot open a dialog at the same time.
	LockFile string

	// ProcessGroup runs the dialog in its own process group so Close also
	// signals its children. Leave it off for dialogs that draw on the
	// controlling terminal: a separate group is a background job there and
	// is stopped as soon as it changes the terminal mode.
	ProcessGroup bool

	Logger        *slog.Logger
	OutputHandler process.OutputHandler // optional sink for every inbound line
	EventBus      *events.Bus           // optional
	Metrics       *Metrics              // optional
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.UpdateInterval <= 0 {
		out.UpdateInterval = DefaultUpdateInterval
	}
	if out.GracefulTimeout <= 0 {
		out.GracefulTimeout = DefaultGracefulTimeout
	}
	if out.InboundBuffer <= 0 {
		out.InboundBuffer = DefaultInboundBuffer
	}
	if out.Logger == nil {
		out.Logger = logging.GetLogger("bridge")
	}
	if out.Metrics == nil {
		out.Metrics = NewMetrics(nil)
	}
	return &out
}
