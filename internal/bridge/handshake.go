package bridge

import (
	"sync/atomic"

	"github.com/smazurov/progressbridge/internal/protocol"
)

// State is the handshake state of a session.
type State int32

// Handshake states. Transitions only move forward; StateClosedByClient is terminal.
const (
	StateWaiting State = iota
	StateConnected
	StateClosedByClient
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateConnected:
		return "connected"
	case StateClosedByClient:
		return "closed_by_client"
	default:
		return "unknown"
	}
}

// handshake holds the State. Only the multiplex loop advances it; any
// goroutine may load it.
type handshake struct {
	v atomic.Int32
}

func (h *handshake) Load() State {
	return State(h.v.Load())
}

func (h *handshake) reset() {
	h.v.Store(int32(StateWaiting))
}

// advance applies one inbound line and returns the states before and after.
func (h *handshake) advance(line string) (from, to State) {
	from = h.Load()
	to = from

	switch {
	case from == StateClosedByClient:
	case protocol.IsClose(line):
		to = StateClosedByClient
	case from == StateWaiting && protocol.IsConnect(line):
		to = StateConnected
	}

	if to != from {
		h.v.Store(int32(to))
	}
	return from, to
}
