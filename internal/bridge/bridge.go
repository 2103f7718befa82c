package bridge

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/process"
	"github.com/smazurov/progressbridge/internal/protocol"
)

// Bridge is one dialog session. It is created by Open and is not reusable
// after Close.
type Bridge struct {
	id     string
	opts   *Options
	guard  *Guard
	logger *slog.Logger
	diag   *slog.Logger // dialog diagnostics

	handshake handshake
	running   atomic.Bool
	outbound  *outboundChannel
	sub       *process.Subprocess
	ticker    *Ticker
	inbound   chan string
	metrics   *Metrics

	done      chan struct{} // closed by Close
	loopDone  chan struct{} // closed when the loop returns
	closeOnce sync.Once
	closeErr  error

	stopMu  sync.Mutex
	stopCtx func() bool // unregisters the context watch
}

// Open launches a session on the shared guard. If a session is already
// open it is returned and nothing is launched.
func Open(ctx context.Context, opts *Options) (*Bridge, error) {
	return shared.Open(ctx, opts)
}

// Run opens a session, calls fn, and closes the session when fn returns.
// fn's error is returned unchanged, so ErrAbort from Refresh can be tested
// with errors.Is. A session that was already open is passed to fn but left
// open.
func Run(ctx context.Context, opts *Options, fn func(*Bridge) error) error {
	b, created, err := shared.open(ctx, opts)
	if err != nil {
		return err
	}
	if created {
		defer b.Close()
	}
	return fn(b)
}

func launch(ctx context.Context, opts *Options, g *Guard) (*Bridge, error) {
	id := uuid.NewString()
	b := &Bridge{
		id:       id,
		opts:     opts,
		guard:    g,
		logger:   opts.Logger.With("session_id", id),
		diag:     logging.GetLogger("dialog").With("session_id", id),
		outbound: newOutboundChannel(),
		inbound:  make(chan string, opts.InboundBuffer),
		metrics:  opts.Metrics,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	b.handshake.reset()
	b.metrics.HandshakeState.Set(float64(StateWaiting))

	sub, err := process.Start(id, opts.LaunchTarget, b.logger,
		process.WithGracefulTimeout(opts.GracefulTimeout),
		process.WithKillTimeout(opts.GracefulTimeout),
		process.WithProcessGroup(opts.ProcessGroup),
	)
	if err != nil {
		b.metrics.LaunchFailures.Inc()
		return nil, &LaunchError{Target: opts.LaunchTarget, Cause: err}
	}
	b.sub = sub
	b.running.Store(true)

	lines := make(chan string)
	go b.readInbound(lines)
	go b.loop(lines)
	b.ticker = NewTicker(opts.UpdateInterval)

	b.watch(ctx)

	b.metrics.SessionsOpened.Inc()
	b.logger.Info("Session opened", "launch_target", opts.LaunchTarget, "pid", sub.PID())
	events.Publish(opts.EventBus, events.SessionOpenedEvent{
		SessionID:    id,
		LaunchTarget: opts.LaunchTarget,
		PID:          sub.PID(),
		Timestamp:    time.Now(),
	})
	return b, nil
}

// watch closes the session when ctx is done. The callback may run before
// watch returns, so stopCtx is only touched under stopMu.
func (b *Bridge) watch(ctx context.Context) {
	b.stopMu.Lock()
	defer b.stopMu.Unlock()
	b.stopCtx = context.AfterFunc(ctx, func() {
		b.logger.Debug("Context done, closing session")
		b.Close()
	})
}

// Close ends the session: it releases the guard, stops the ticker and the
// loop, and terminates the dialog. Safe to call more than once.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.guard.release(b)
		b.stopMu.Lock()
		stop := b.stopCtx
		b.stopMu.Unlock()
		if stop != nil {
			stop()
		}
		b.ticker.Stop()
		b.running.Store(false)
		close(b.done)
		b.outbound.Close()

		exitCode := b.sub.Stop()

		select {
		case <-b.loopDone:
		case <-time.After(b.opts.GracefulTimeout):
			b.logger.Warn("Loop did not exit after close")
		}

		state := b.handshake.Load()
		b.logger.Info("Session closed", "state", state, "exit_code", exitCode)
		events.Publish(b.opts.EventBus, events.SessionClosedEvent{
			SessionID: b.id,
			State:     state.String(),
			ExitCode:  exitCode,
			Timestamp: time.Now(),
		})
	})
	return b.closeErr
}

// Push queues status for the dialog if the handshake is Connected and drops
// it otherwise. It never blocks on the dialog and returns the current state.
func (b *Bridge) Push(status protocol.Status) State {
	if b.handshake.Load() != StateConnected || !b.outbound.Write(status.Lines()...) {
		b.metrics.PushesDropped.Inc()
		return b.handshake.Load()
	}
	b.metrics.PushesForwarded.Inc()
	return b.handshake.Load()
}

// Refresh pushes status and returns ErrAbort once the user has cancelled.
// After Close it returns ErrClosed, unless the user had cancelled first.
func (b *Bridge) Refresh(status protocol.Status) (State, error) {
	state := b.Push(status)
	if state == StateClosedByClient {
		return state, ErrAbort
	}
	select {
	case <-b.done:
		return state, ErrClosed
	default:
	}
	return state, nil
}

// ShouldUpdate reports whether an update interval elapsed since the last
// true result.
func (b *Bridge) ShouldUpdate() bool {
	return b.ticker.Due()
}

// Post queues a raw line regardless of the handshake state. Lines posted
// before the dialog connects are forwarded, in order, once it does. Embedded
// line breaks split the text into several lines.
func (b *Bridge) Post(line string) error {
	lines := strings.Split(strings.TrimRight(line, "\r\n"), "\n")
	if !b.outbound.Write(lines...) {
		return ErrClosed
	}
	return nil
}

// Inbound returns every line read from the dialog. When the buffer is full
// the oldest line is discarded. The channel is closed when the loop exits.
func (b *Bridge) Inbound() <-chan string {
	return b.inbound
}

// State returns the handshake state.
func (b *Bridge) State() State {
	return b.handshake.Load()
}

// Running reports whether the loop is still servicing the dialog.
func (b *Bridge) Running() bool {
	return b.running.Load()
}

// SessionID returns the session's unique id.
func (b *Bridge) SessionID() string {
	return b.id
}

// PID returns the dialog's process id.
func (b *Bridge) PID() int {
	return b.sub.PID()
}

// Done is closed when the loop exits for any reason.
func (b *Bridge) Done() <-chan struct{} {
	return b.loopDone
}

// Info is a point-in-time view of a session.
type Info struct {
	SessionID    string
	LaunchTarget string
	PID          int
	State        State
	Running      bool
	Pending      int // outbound lines not yet written
	StartedAt    time.Time
}

// Info returns a snapshot of the session.
func (b *Bridge) Info() Info {
	return Info{
		SessionID:    b.id,
		LaunchTarget: b.opts.LaunchTarget,
		PID:          b.sub.PID(),
		State:        b.handshake.Load(),
		Running:      b.running.Load(),
		Pending:      b.outbound.Len(),
		StartedAt:    b.sub.Info().StartedAt,
	}
}

// SetUpdateInterval changes how often ShouldUpdate turns true.
func (b *Bridge) SetUpdateInterval(d time.Duration) {
	b.ticker.Reset(d)
	b.logger.Debug("Update interval changed", "interval", d)
}
