package bridge

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/process"
	"github.com/smazurov/progressbridge/internal/protocol"
)

// loop services the session until Close, a close token, or end of stream.
func (b *Bridge) loop(lines <-chan string) {
	defer close(b.loopDone)
	defer close(b.inbound)
	defer b.sub.Stop()
	defer b.running.Store(false)

	for {
		var ready <-chan struct{}
		if b.handshake.Load() == StateConnected {
			ready = b.outbound.Ready()
		}

		select {
		case <-b.done:
			return
		case <-ready:
			if !b.forward() {
				return
			}
		case line, ok := <-lines:
			if !ok {
				b.logger.Debug("Dialog output closed")
				return
			}
			b.handleInbound(line)
			if !b.running.Load() {
				return
			}
		}
	}
}

// forward writes every queued line to the dialog. It returns false when the
// loop should stop.
func (b *Bridge) forward() bool {
	for _, line := range b.outbound.Drain() {
		if !b.running.Load() {
			return false
		}
		if _, err := io.WriteString(b.sub, line+"\n"); err != nil {
			if process.IsClosed(err) {
				b.logger.Debug("Dialog input closed", "error", err)
			} else {
				b.logger.Warn("Failed to write to dialog", "error", err)
			}
			return false
		}
		b.metrics.LinesWritten.Inc()
	}
	return true
}

func (b *Bridge) handleInbound(line string) {
	b.metrics.InboundLines.Inc()

	if from, to := b.handshake.advance(line); from != to {
		b.onTransition(from, to)
	}

	if protocol.IsDiagnostic(line) {
		b.diag.Info(line)
	} else {
		b.logger.Debug("Dialog output", "line", line)
	}

	b.enqueueInbound(line)
	if b.opts.OutputHandler != nil {
		b.opts.OutputHandler.HandleLine("dialog", line)
	}
	events.Publish(b.opts.EventBus, events.InboundLineEvent{
		SessionID: b.id,
		Line:      line,
		Timestamp: time.Now(),
	})
}

func (b *Bridge) onTransition(from, to State) {
	b.logger.Info("Handshake state changed", "from", from, "to", to)
	b.metrics.HandshakeState.Set(float64(to))

	if to == StateClosedByClient {
		b.running.Store(false)
		b.metrics.Cancellations.Inc()
	}

	events.Publish(b.opts.EventBus, events.StateChangedEvent{
		SessionID: b.id,
		From:      from.String(),
		To:        to.String(),
		Timestamp: time.Now(),
	})
}

// enqueueInbound adds line to the inbound buffer, evicting the oldest entry
// when full. Only the loop sends on b.inbound.
func (b *Bridge) enqueueInbound(line string) {
	for {
		select {
		case b.inbound <- line:
			return
		default:
		}
		select {
		case <-b.inbound:
			b.metrics.InboundDropped.Inc()
		default:
		}
	}
}

// readInbound splits the dialog's merged output into lines for the loop.
func (b *Bridge) readInbound(out chan<- string) {
	defer close(out)

	reader := bufio.NewReader(b.sub)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			select {
			case out <- strings.TrimRight(line, "\r\n"):
			case <-b.loopDone:
				return
			}
		}
		if err != nil {
			if !process.IsClosed(err) {
				b.logger.Warn("Failed to read dialog output", "error", err)
			}
			return
		}
	}
}
