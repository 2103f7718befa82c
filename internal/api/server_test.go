package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/progressbridge/internal/api/models"
	"github.com/smazurov/progressbridge/internal/bridge"
	"github.com/smazurov/progressbridge/internal/logging"
)

const connectingDialog = `sh -c "echo RUBY2D_Connect; cat > /dev/null"`

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func openSession(t *testing.T, guard *bridge.Guard) *bridge.Bridge {
	t.Helper()
	b, err := guard.Open(context.Background(), &bridge.Options{
		LaunchTarget:    connectingDialog,
		GracefulTimeout: 500 * time.Millisecond,
		Logger:          logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for b.State() != bridge.StateConnected {
		if time.Now().After(deadline) {
			t.Fatalf("dialog never connected, state %v", b.State())
		}
		time.Sleep(10 * time.Millisecond)
	}
	return b
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &Options{Guard: bridge.NewGuard()})

	var body models.HealthData
	if code := getJSON(t, ts.URL+"/api/health", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body.Status != "ok" || body.Session {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t, &Options{Guard: bridge.NewGuard()})

	var body models.VersionData
	if code := getJSON(t, ts.URL+"/api/version", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body.Version == "" || body.GoVersion == "" {
		t.Errorf("incomplete version %+v", body)
	}
}

func TestSessionNotFound(t *testing.T) {
	ts := newTestServer(t, &Options{Guard: bridge.NewGuard()})

	if code := getJSON(t, ts.URL+"/api/session", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 without a session, got %d", code)
	}
}

func TestSessionSnapshot(t *testing.T) {
	guard := bridge.NewGuard()
	b := openSession(t, guard)
	ts := newTestServer(t, &Options{Guard: guard})

	var body models.SessionData
	if code := getJSON(t, ts.URL+"/api/session", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body.SessionID != b.SessionID() {
		t.Errorf("session id %q, want %q", body.SessionID, b.SessionID())
	}
	if body.State != "connected" || !body.Running {
		t.Errorf("unexpected session %+v", body)
	}
	if body.PID != b.PID() || body.LaunchTarget != connectingDialog {
		t.Errorf("unexpected process fields %+v", body)
	}

	var health models.HealthData
	getJSON(t, ts.URL+"/api/health", &health)
	if !health.Session {
		t.Error("health should report the open session")
	}
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("progressbridge_sessions_opened_total 1\n"))
	})
	ts := newTestServer(t, &Options{Guard: bridge.NewGuard(), MetricsHandler: metrics})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "progressbridge_sessions_opened_total") {
		t.Errorf("unexpected metrics body %q", data)
	}
}

func TestStartStop(t *testing.T) {
	s := NewServer(&Options{Guard: bridge.NewGuard()})
	if err := s.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start("127.0.0.1:0") }()

	// Start publishes the server before listening; retry Stop until it
	// takes effect.
	deadline := time.After(2 * time.Second)
	for {
		s.Stop()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Start returned %v after Stop", err)
			}
			return
		case <-deadline:
			t.Fatal("Start did not return after Stop")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
