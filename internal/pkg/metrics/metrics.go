// Package metrics holds the Prometheus collectors of the order engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order operations by event and outcome.",
		},
		[]string{"event", "outcome"},
	)

	assignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "role_acceptances_total",
			Help:      "Role acceptance attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)

	orderTotals = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "checkout_amount",
			Help:      "Order total at checkout.",
			Buckets:   prometheus.ExponentialBuckets(1, 2.5, 10),
		},
		[]string{"type"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "duration_seconds",
			Help:      "Duration of command handlers.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"command"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Notifications handed to the sink by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		transitions,
		assignments,
		orderTotals,
		commandDuration,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Outcome labels an operation result. Expected rejections (lost races,
// illegal transitions) are "rejected", infrastructure failures "error".
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

func RecordTransition(event string, outcome Outcome) {
	transitions.WithLabelValues(event, string(outcome)).Inc()
}

func RecordAcceptance(role string, outcome Outcome) {
	assignments.WithLabelValues(role, string(outcome)).Inc()
}

func ObserveCheckoutTotal(orderType string, total float64) {
	orderTotals.WithLabelValues(orderType).Observe(total)
}

func RecordNotification(kind string, outcome Outcome) {
	notifications.WithLabelValues(kind, string(outcome)).Inc()
}

// Timer measures one command execution. Call the returned func when done.
func Timer(command string) func() {
	start := time.Now()
	return func() {
		commandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	}
}
