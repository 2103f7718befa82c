package process

import "time"

// State represents the lifecycle phase of a Subprocess.
type State string

// Subprocess states.
const (
	StateRunning  State = "running"  // Started, not yet reaped
	StateStopping State = "stopping" // Stop in progress
	StateExited   State = "exited"   // Reaped
)

// Info contains information about a subprocess.
type Info struct {
	ID        string
	Command   string
	State     State
	PID       int
	StartedAt time.Time
	ExitCode  int
	LastError error
}
