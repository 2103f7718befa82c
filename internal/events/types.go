package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeSessionOpened uint32 = iota + 1
	TypeStateChanged
	TypeInboundLine
	TypeSessionClosed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionOpenedEvent is published once the subprocess has been launched.
type SessionOpenedEvent struct {
	SessionID    string    `json:"session_id"`
	LaunchTarget string    `json:"launch_target"`
	PID          int       `json:"pid"`
	Timestamp    time.Time `json:"timestamp"`
}

// Type returns the event type identifier for SessionOpenedEvent.
func (e SessionOpenedEvent) Type() uint32 { return TypeSessionOpened }

// StateChangedEvent represents a handshake transition.
type StateChangedEvent struct {
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for StateChangedEvent.
func (e StateChangedEvent) Type() uint32 { return TypeStateChanged }

// InboundLineEvent carries one line of dialog output.
type InboundLineEvent struct {
	SessionID string    `json:"session_id"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for InboundLineEvent.
func (e InboundLineEvent) Type() uint32 { return TypeInboundLine }

// SessionClosedEvent is published after the bridge released its resources.
type SessionClosedEvent struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	ExitCode  int       `json:"exit_code"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for SessionClosedEvent.
func (e SessionClosedEvent) Type() uint32 { return TypeSessionClosed }
