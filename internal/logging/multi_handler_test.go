package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestMultiHandlerFlattensAndDropsNil(t *testing.T) {
	a := slog.NewTextHandler(&bytes.Buffer{}, nil)
	b := slog.NewTextHandler(&bytes.Buffer{}, nil)
	c := slog.NewTextHandler(&bytes.Buffer{}, nil)

	m := NewMultiHandler(a, nil, NewMultiHandler(b, c))
	if len(m.sinks) != 3 {
		t.Errorf("expected 3 sinks, got %d", len(m.sinks))
	}
}

func TestMultiHandlerJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	errJournal := errors.New("journal down")
	m := NewMultiHandler(
		failingHandler{Handler: slog.NewTextHandler(&buf, nil), err: errJournal},
		slog.NewTextHandler(&buf, nil),
	)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "Session opened", 0)
	err := m.Handle(context.Background(), r)
	if !errors.Is(err, errJournal) {
		t.Errorf("expected joined journal error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Session opened") {
		t.Error("healthy sink should still receive the record")
	}
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var first, second bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&first, nil),
		slog.NewTextHandler(&second, nil),
	)).With("session_id", "abc").WithGroup("dialog")

	logger.Info("Inbound line", "line", "RUBY2D_Connect")

	for name, out := range map[string]string{"first": first.String(), "second": second.String()} {
		if !strings.Contains(out, "session_id=abc") || !strings.Contains(out, "dialog.line=RUBY2D_Connect") {
			t.Errorf("%s sink missing attrs: %s", name, out)
		}
	}
}
