// Package metrics provides Prometheus metrics for payment orchestration.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the payment, refund and polling instruments.
type Metrics struct {
	PaymentsTotal *prometheus.CounterVec // payments by carrier and terminal status
	RefundsTotal  *prometheus.CounterVec // refunds by carrier and terminal status

	PollAttempts *prometheus.HistogramVec // status queries issued per confirmation poll

	RequestDurationSeconds *prometheus.HistogramVec // gateway round-trip latency by path
}

// New creates a Metrics instance registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PaymentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qosic_payments_total",
			Help: "Total payment requests by carrier and terminal status",
		}, []string{"carrier", "status"}),

		RefundsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qosic_refunds_total",
			Help: "Total refund requests by carrier and terminal status",
		}, []string{"carrier", "status"}),

		PollAttempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qosic_poll_attempts",
			Help:    "Status queries issued per confirmation poll",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}, []string{"carrier"}),

		RequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qosic_gateway_request_duration_seconds",
			Help:    "Gateway round-trip latency by path",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

// RecordPayment counts one terminal payment outcome.
func (m *Metrics) RecordPayment(carrier, status string) {
	m.PaymentsTotal.WithLabelValues(carrier, status).Inc()
}

// RecordRefund counts one terminal refund outcome.
func (m *Metrics) RecordRefund(carrier, status string) {
	m.RefundsTotal.WithLabelValues(carrier, status).Inc()
}

// ObservePollAttempts records how many status queries one poll needed.
func (m *Metrics) ObservePollAttempts(carrier string, attempts int) {
	m.PollAttempts.WithLabelValues(carrier).Observe(float64(attempts))
}

// ObserveRequestDuration records one gateway round trip.
func (m *Metrics) ObserveRequestDuration(path string, seconds float64) {
	m.RequestDurationSeconds.WithLabelValues(path).Observe(seconds)
}

// GatewayObserver feeds gateway request lifecycle callbacks into the latency
// histogram.
type GatewayObserver struct {
	metrics *Metrics
}

// NewGatewayObserver wraps m as a gateway request observer.
func NewGatewayObserver(m *Metrics) *GatewayObserver {
	return &GatewayObserver{metrics: m}
}

func (o *GatewayObserver) RequestSent(context.Context, string, string) {}

func (o *GatewayObserver) ResponseReceived(_ context.Context, _, path string, _ int, elapsed time.Duration) {
	o.metrics.ObserveRequestDuration(path, elapsed.Seconds())
}
