package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CartMetrics records cart mutations and order submissions.
type CartMetrics struct {
	mutations      *prometheus.CounterVec
	orders         *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submissions, by transport and outcome.",
	}, []string{"transport", "outcome"})
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport"})
	reg.MustRegister(mutations, orders, submitDuration)
	return &CartMetrics{
		mutations:      mutations,
		orders:         orders,
		submitDuration: submitDuration,
	}
}

// IncMutation counts one applied cart mutation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveOrderSubmit records the outcome and latency of one order submission.
func (c *CartMetrics) ObserveOrderSubmit(transport string, duration time.Duration, err error) {
	if c == nil || c.orders == nil {
		return
	}
	transport = normalizeLabel(transport)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.orders.WithLabelValues(transport, outcome).Inc()
	c.submitDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
