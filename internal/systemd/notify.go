// Package systemd reports service status to the systemd manager when the
// host runs as a Type=notify unit. Outside systemd every call is a no-op.
package systemd

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/logging"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	logger logging.Logger
}

// NewNotifier returns a notifier that logs send failures to logger.
func NewNotifier(logger logging.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Ready tells systemd that startup finished. It reports whether a
// notification socket was available.
func (n *Notifier) Ready() bool {
	return n.send(daemon.SdNotifyReady)
}

// Stopping tells systemd that shutdown has begun.
func (n *Notifier) Stopping() bool {
	return n.send(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) bool {
	return n.send("STATUS=" + msg)
}

// Follow mirrors session events from bus into the unit status until the
// returned function is called.
func (n *Notifier) Follow(bus *events.Bus) func() {
	unsubs := []func(){
		events.Subscribe(bus, func(events.SessionOpenedEvent) {
			n.Status("Dialog launched, waiting for connect")
		}),
		events.Subscribe(bus, func(e events.StateChangedEvent) {
			n.Status("Dialog " + e.To)
		}),
		events.Subscribe(bus, func(events.SessionClosedEvent) {
			n.Status("Dialog closed")
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (n *Notifier) send(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
	}
	return sent
}
