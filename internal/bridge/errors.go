package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrAbort reports that the user cancelled from the dialog.
	ErrAbort = errors.New("user cancelled")

	// ErrClosed is returned by Post and Refresh once the bridge has been closed.
	ErrClosed = errors.New("bridge closed")

	// ErrInUse is returned when the lock file is held by another process.
	ErrInUse = errors.New("bridge in use by another process")
)

// LaunchError reports that the subprocess could not be started.
type LaunchError struct {
	Target string
	Cause  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Target, e.Cause)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}
