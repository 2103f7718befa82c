package dialog

import (
	"fmt"
	"io"
	"sync"

	"github.com/smazurov/progressbridge/internal/protocol"
)

// tokenWriter serializes everything the dialog writes to the bridge.
type tokenWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (t *tokenWriter) connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, protocol.TokenConnect)
	return err
}

// diagnostic writes a prefixed line the bridge logs but otherwise ignores.
func (t *tokenWriter) diagnostic(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s\n", protocol.DiagnosticPrefix, fmt.Sprintf(format, args...))
}

// close writes the close token once. Later calls are no-ops.
func (t *tokenWriter) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_, err := fmt.Fprintln(t.w, protocol.TokenClose)
	return err
}
