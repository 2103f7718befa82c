package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/smazurov/progressbridge/internal/api/models"
	"github.com/smazurov/progressbridge/internal/bridge"
	"github.com/smazurov/progressbridge/internal/events"
	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/version"
)

// Options configures the status server.
type Options struct {
	Guard          *bridge.Guard // defaults to bridge.SharedGuard()
	EventBus       *events.Bus   // source for /api/events; nil serves an idle stream
	MetricsHandler http.Handler  // mounted at /metrics when set
}

// Server exposes the state of the host's dialog session over HTTP.
type Server struct {
	api    huma.API
	mux    *http.ServeMux
	guard  *bridge.Guard
	bus    *events.Bus
	logger *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer builds the routes. Nothing listens until Start.
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	guard := opts.Guard
	if guard == nil {
		guard = bridge.SharedGuard()
	}

	mux := http.NewServeMux()
	config := huma.DefaultConfig("progressbridge", version.Get().Version)
	config.Info.Description = "Read-only view of the progress dialog session"
	config.Servers = []*huma.Server{}

	s := &Server{
		api:    humago.New(mux, config),
		mux:    mux,
		guard:  guard,
		bus:    opts.EventBus,
		logger: logging.GetLogger("api"),
	}
	s.api.UseMiddleware(s.logRequests)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	s.registerRoutes()
	s.registerEventRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves until Stop. It returns nil after Stop.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("Serving status API", "addr", addr, "docs", "http://"+addr+"/docs")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and every open connection, event streams
// included. A nil server is a no-op.
func (s *Server) Stop() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("Stopping status API")
	return srv.Close()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Tags:        []string{"system"},
	}, func(context.Context, *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{Status: "ok", Session: s.guard.Active() != nil},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Tags:        []string{"system"},
	}, func(context.Context, *struct{}) (*models.VersionResponse, error) {
		v := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   v.Version,
				GitCommit: v.GitCommit,
				BuildDate: v.BuildDate,
				GoVersion: v.GoVersion,
				Platform:  v.Platform,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Current session",
		Description: "Snapshot of the open dialog session",
		Tags:        []string{"session"},
		Errors:      []int{http.StatusNotFound},
	}, func(context.Context, *struct{}) (*models.SessionResponse, error) {
		b := s.guard.Active()
		if b == nil {
			return nil, huma.Error404NotFound("no dialog session is open")
		}
		return &models.SessionResponse{Body: sessionData(b.Info())}, nil
	})
}

func sessionData(info bridge.Info) models.SessionData {
	return models.SessionData{
		SessionID:    info.SessionID,
		LaunchTarget: info.LaunchTarget,
		PID:          info.PID,
		State:        info.State.String(),
		Running:      info.Running,
		Pending:      info.Pending,
		StartedAt:    info.StartedAt,
	}
}
