// Package bridge connects a long-running host computation to a rendering
// subprocess that displays its progress and can cancel it.
//
// A Bridge owns three goroutines for the life of one session:
//   - the multiplex loop, which forwards queued outbound lines to the
//     subprocess and runs the handshake/cancel protocol on its output
//   - an inbound reader feeding the loop one line at a time
//   - a Ticker raising the update-due flag the host polls via ShouldUpdate
//
// Outbound lines are only forwarded once the subprocess has sent the connect
// token. The host learns of a user cancel on its next Push or Refresh; there
// is no asynchronous interrupt.
//
// At most one Bridge is open per Guard. Open uses the process-wide guard
// returned by SharedGuard; a second Open while a session is active returns
// the active Bridge and launches nothing.
//
// Example usage:
//
//	err := bridge.Run(ctx, &bridge.Options{LaunchTarget: "rubyw dialog.rb"}, func(b *bridge.Bridge) error {
//	    for i, item := range items {
//	        process(item)
//	        if b.ShouldUpdate() {
//	            status := protocol.Status{Operation: "Adding Cubes", Value: 100 * float64(i) / float64(len(items))}
//	            if _, err := b.Refresh(status); err != nil {
//	                return err
//	            }
//	        }
//	    }
//	    return nil
//	})
//	if errors.Is(err, bridge.ErrAbort) {
//	    // user cancelled; roll back and stop quietly
//	}
package bridge
