package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/smazurov/progressbridge/internal/bridge"
	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/protocol"
)

const demoOperation = "Adding Cubes"

// demo is a stand-in host computation: it works through a number of items and
// reports progress to the dialog between them.
type demo struct {
	items     int
	workDelay time.Duration
	logger    logging.Logger
	out       io.Writer
}

// run drives one dialog session. A user cancel is a normal outcome.
func (d *demo) run(ctx context.Context, opts *bridge.Options) error {
	start := time.Now()
	done := 0

	err := bridge.Run(ctx, opts, func(b *bridge.Bridge) error {
		if _, err := b.Refresh(d.status(0)); err != nil {
			return err
		}
		for i := range d.items {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.work()
			done = i + 1

			if b.ShouldUpdate() {
				if _, err := b.Refresh(d.status(done)); err != nil {
					return err
				}
			}
		}
		return nil
	})

	switch {
	case errors.Is(err, bridge.ErrAbort):
		d.logger.Info("Demo canceled by user", "completed", done, "elapsed", time.Since(start))
		fmt.Fprintln(d.out, "Demo canceled")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, bridge.ErrClosed) && ctx.Err() != nil:
		d.logger.Info("Demo interrupted", "completed", done)
		return nil
	case err != nil:
		return err
	}

	d.logger.Info("Demo finished", "items", d.items, "elapsed", time.Since(start))
	fmt.Fprintln(d.out, "Demo completed")
	return nil
}

func (d *demo) work() {
	if d.workDelay > 0 {
		time.Sleep(d.workDelay)
	}
}

func (d *demo) status(done int) protocol.Status {
	value := 100.0
	if d.items > 0 {
		value = 100 * float64(done) / float64(d.items)
	}
	return protocol.Status{
		Operation: demoOperation,
		Label:     fmt.Sprintf("Remaining: %d", d.items-done),
		Value:     value,
	}
}
