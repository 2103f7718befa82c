package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/flock"
)

// Guard enforces that at most one Bridge is open at a time.
type Guard struct {
	mu     sync.Mutex
	active *Bridge
	lock   *flock.Flock
}

var shared = &Guard{}

// NewGuard returns an empty Guard. Most callers want SharedGuard.
func NewGuard() *Guard {
	return &Guard{}
}

// SharedGuard returns the process-wide Guard used by Open and Run.
func SharedGuard() *Guard {
	return shared
}

// Open launches a new session, or returns the active one unchanged.
func (g *Guard) Open(ctx context.Context, opts *Options) (*Bridge, error) {
	b, _, err := g.open(ctx, opts)
	return b, err
}

// Active returns the open Bridge, or nil.
func (g *Guard) Active() *Bridge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Guard) open(ctx context.Context, opts *Options) (*Bridge, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active != nil {
		return g.active, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	opts = opts.withDefaults()

	var lock *flock.Flock
	if opts.LockFile != "" {
		lock = flock.New(opts.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, false, fmt.Errorf("lock %s: %w", opts.LockFile, err)
		}
		if !locked {
			return nil, false, ErrInUse
		}
	}

	b, err := launch(ctx, opts, g)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, false, err
	}

	g.active = b
	g.lock = lock
	return b, true, nil
}

// release clears b if it is the active session.
func (g *Guard) release(b *Bridge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active != b {
		return nil
	}
	g.active = nil

	if g.lock == nil {
		return nil
	}
	lock := g.lock
	g.lock = nil
	if err := lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", lock.Path(), err)
	}
	return nil
}
