package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/progressbridge/internal/api/models"
	"github.com/smazurov/progressbridge/internal/events"
)

// eventTypes maps SSE event names to payload types.
var eventTypes = map[string]any{
	"hello":          models.HelloEvent{},
	"session-opened": events.SessionOpenedEvent{},
	"state-changed":  events.StateChangedEvent{},
	"inbound-line":   events.InboundLineEvent{},
	"session-closed": events.SessionClosedEvent{},
}

func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Session events",
		Description: "Server-sent stream of session lifecycle, handshake and dialog output events",
		Tags:        []string{"session"},
	}, eventTypes, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		ch := make(chan any, 32)
		unsubscribe := []func(){
			events.Forward[events.SessionOpenedEvent](s.bus, ch),
			events.Forward[events.StateChangedEvent](s.bus, ch),
			events.Forward[events.InboundLineEvent](s.bus, ch),
			events.Forward[events.SessionClosedEvent](s.bus, ch),
		}
		defer func() {
			for _, unsub := range unsubscribe {
				unsub()
			}
		}()

		if err := send.Data(models.HelloEvent{Message: "subscribed", Timestamp: time.Now()}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				if err := send.Data(ev); err != nil {
					s.logger.Debug("Event stream closed", "error", err)
					return
				}
			}
		}
	})
}
