package bridge

import (
	"strings"
	"sync"
)

// outboundChannel is the unbounded FIFO of lines the host has queued for the
// subprocess. Writers never block. The loop waits on Ready and then Drains.
type outboundChannel struct {
	mu     sync.Mutex
	lines  []string
	closed bool
	ready  chan struct{}
}

func newOutboundChannel() *outboundChannel {
	return &outboundChannel{ready: make(chan struct{}, 1)}
}

// Write appends lines as one contiguous batch. Returns false once closed.
func (c *outboundChannel) Write(lines ...string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	for _, line := range lines {
		c.lines = append(c.lines, strings.TrimRight(line, "\r\n"))
	}
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready receives a value after Write; it may fire with nothing left to drain.
func (c *outboundChannel) Ready() <-chan struct{} {
	return c.ready
}

// Drain removes and returns every queued line in write order.
func (c *outboundChannel) Drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := c.lines
	c.lines = nil
	return lines
}

// Len returns the number of queued lines.
func (c *outboundChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Close drops queued lines and rejects further writes.
func (c *outboundChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.lines = nil
}
