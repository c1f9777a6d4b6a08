package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks approval decisions by entity type, decision and outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_decisions_total",
			Help: "Total number of approval decisions processed (by entity, decision and result).",
		},
		[]string{"entity", "decision", "result"},
	)

	// Measures end-to-end duration of a decision, including propagation and reverts.
	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_decision_duration_seconds",
			Help:    "Duration of approval decisions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"entity"},
	)

	// Tracks partner→product back-reference propagation writes.
	PropagationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_propagation_updates_total",
			Help: "Total number of partner mapping propagation updates by result.",
		},
		[]string{"result"}, // ok | error
	)

	// Tracks change request reverts.
	RevertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_reverts_total",
			Help: "Total number of change request revert attempts by result.",
		},
		[]string{"result"}, // ok | noop | error
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks partner webhook notification deliveries.
	WebhookNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_webhook_notifications_total",
			Help: "Total number of partner webhook notifications by result.",
		},
		[]string{"result"}, // ok | error | skipped
	)

	// Gauges the number of entities awaiting review per type.
	PendingEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketplace_pending_entities",
			Help: "Number of entities currently awaiting review, per entity type.",
		},
		[]string{"entity"},
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_errors_total",
			Help: "Count of service-level errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncDecision(entity, decision, result string) {
	DecisionsTotal.WithLabelValues(entity, decision, result).Inc()
}

func IncPropagation(result string) {
	PropagationTotal.WithLabelValues(result).Inc()
}

func IncRevert(result string) {
	RevertsTotal.WithLabelValues(result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncWebhookNotification(result string) {
	WebhookNotifications.WithLabelValues(result).Inc()
}

func SetPendingEntities(entity string, count int) {
	PendingEntities.WithLabelValues(entity).Set(float64(count))
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}
