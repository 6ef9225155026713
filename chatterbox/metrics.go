package chatterbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds session collectors. A nil *Metrics records nothing.
type Metrics struct {
	events     *prometheus.CounterVec
	commands   *prometheus.CounterVec
	reconnects prometheus.Counter
	state      *prometheus.GaugeVec
}

// NewMetrics registers the session collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chatterbox_events_total",
			Help: "Inbound stream events grouped by kind",
		}, []string{"kind"}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chatterbox_commands_total",
			Help: "Outbound commands grouped by mode and outcome (sent, error, dropped)",
		}, []string{"mode", "status"}),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "chatterbox_reconnects_total",
			Help: "Stream subscriptions reopened after a disconnect",
		}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chatterbox_connection_state",
			Help: "1 for the current connection state, 0 otherwise",
		}, []string{"state"}),
	}
}

func (m *Metrics) observeEvent(kind EventKind) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeCommand(mode Mode, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "error"
	}
	m.commands.WithLabelValues(string(mode), status).Inc()
}

func (m *Metrics) observeDropped(mode Mode) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(string(mode), "dropped").Inc()
}

func (m *Metrics) observeReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) observeState(old, next ConnectionState) {
	if m == nil {
		return
	}
	m.state.WithLabelValues(old.String()).Set(0)
	m.state.WithLabelValues(next.String()).Set(1)
}
