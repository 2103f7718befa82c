package bridge

import (
	"strings"
	"sync"
	"testing"
)

func TestOutboundOrder(t *testing.T) {
	c := newOutboundChannel()
	c.Write("a")
	c.Write("b\n", "c")

	select {
	case <-c.Ready():
	default:
		t.Fatal("expected ready signal after write")
	}

	got := c.Drain()
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("Drain() = %q, want [a b c]", got)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty channel after drain, got %d", c.Len())
	}
}

func TestOutboundBatchesStayContiguous(t *testing.T) {
	c := newOutboundChannel()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag := string(rune('a' + i))
			c.Write(tag+"1", tag+"2", tag+"3")
		}()
	}
	wg.Wait()

	lines := c.Drain()
	if len(lines) != 60 {
		t.Fatalf("expected 60 lines, got %d", len(lines))
	}
	for i := 0; i < len(lines); i += 3 {
		tag := lines[i][:1]
		if lines[i+1] != tag+"2" || lines[i+2] != tag+"3" {
			t.Fatalf("batch interleaved at %d: %q", i, lines[i:i+3])
		}
	}
}

func TestOutboundClose(t *testing.T) {
	c := newOutboundChannel()
	c.Write("queued")
	c.Close()

	if c.Write("late") {
		t.Error("expected write after close to fail")
	}
	if got := c.Drain(); len(got) != 0 {
		t.Errorf("expected queued lines dropped on close, got %q", got)
	}
}
