package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bridge's Prometheus collectors.
type Metrics struct {
	SessionsOpened  prometheus.Counter
	LaunchFailures  prometheus.Counter
	Cancellations   prometheus.Counter
	PushesForwarded prometheus.Counter
	PushesDropped   prometheus.Counter
	LinesWritten    prometheus.Counter
	InboundLines    prometheus.Counter
	InboundDropped  prometheus.Counter
	HandshakeState  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_sessions_opened_total",
			Help: "Dialog sessions launched",
		}),
		LaunchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_launch_failures_total",
			Help: "Dialog launches that failed",
		}),
		Cancellations: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_cancellations_total",
			Help: "Sessions closed by the user from the dialog",
		}),
		PushesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_pushes_total",
			Help: "Status pushes queued for the dialog",
		}),
		PushesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_pushes_dropped_total",
			Help: "Status pushes dropped because the dialog was not connected",
		}),
		LinesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_lines_written_total",
			Help: "Lines written to the dialog's input",
		}),
		InboundLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_inbound_lines_total",
			Help: "Lines read from the dialog's output",
		}),
		InboundDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "progressbridge_inbound_dropped_total",
			Help: "Inbound lines evicted from a full inbound buffer",
		}),
		HandshakeState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "progressbridge_handshake_state",
			Help: "Current handshake state (0 waiting, 1 connected, 2 closed by client)",
		}),
	}
}
