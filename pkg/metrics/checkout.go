package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout flow outcomes.
type CheckoutMetrics struct {
	initiated     *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	publishFail   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	initiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_initiated",
		Help: "Checkout sessions created, by result.",
	}, []string{"result"})
	confirmations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_confirmations",
		Help: "Payment confirmations processed, by outcome.",
	}, []string{"outcome"})
	publishFail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_publish_failures",
		Help: "Fulfillment messages that failed to publish.",
	}, []string{"topic"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_operation_duration_seconds",
		Help:    "Duration of checkout operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(initiated, confirmations, publishFail, duration)
	return &CheckoutMetrics{
		initiated:     initiated,
		confirmations: confirmations,
		publishFail:   publishFail,
		duration:      duration,
	}
}

// IncInitiated counts a checkout session creation attempt by result.
func (c *CheckoutMetrics) IncInitiated(result string) {
	if c == nil || c.initiated == nil {
		return
	}
	c.initiated.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncConfirmation counts a confirmation by outcome (completed/failed/replayed).
func (c *CheckoutMetrics) IncConfirmation(outcome string) {
	if c == nil || c.confirmations == nil {
		return
	}
	c.confirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPublishFailure counts a failed fulfillment publish for the topic.
func (c *CheckoutMetrics) IncPublishFailure(topic string) {
	if c == nil || c.publishFail == nil {
		return
	}
	c.publishFail.WithLabelValues(normalizeLabel(topic)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (c *CheckoutMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
