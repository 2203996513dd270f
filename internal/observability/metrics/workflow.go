package metrics

import (
	"net/http"
	"time"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkflowMetrics records submission and gateway activity. It satisfies
// ports.WorkflowObserver and analysisapi.CallObserver.
type WorkflowMetrics struct {
	registry *prometheus.Registry
	service  string

	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	submissionInFlight prometheus.Gauge
	rejectedTotal      *prometheus.CounterVec
	staleTotal         *prometheus.CounterVec
	gatewayTotal       *prometheus.CounterVec
	gatewayDuration    *prometheus.HistogramVec
}

func NewWorkflowMetrics(service string) *WorkflowMetrics {
	return NewWorkflowMetricsWithRegistry(service, prometheus.NewRegistry())
}

// NewWorkflowMetricsWithRegistry registers the collectors on registry, which
// lets one /metrics endpoint serve workflow and HTTP series together.
func NewWorkflowMetricsWithRegistry(service string, registry *prometheus.Registry) *WorkflowMetrics {
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Finished submissions by kind and outcome.",
		},
		[]string{"service", "kind", "outcome"},
	)
	submissionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tracker",
			Subsystem: "workflow",
			Name:      "submission_duration_seconds",
			Help:      "Submission duration in seconds, including the clause fetch.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "kind", "outcome"},
	)
	submissionInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tracker",
			Subsystem: "workflow",
			Name:      "submission_in_flight",
			Help:      "1 while a submission is in flight.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "workflow",
			Name:      "submissions_rejected_total",
			Help:      "Submissions rejected before reaching the analysis service.",
		},
		[]string{"service", "kind", "reason"},
	)
	staleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "workflow",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer submission superseded them.",
		},
		[]string{"service", "operation"},
	)
	gatewayTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Analysis service calls by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	gatewayDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tracker",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Analysis service call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(submissionsTotal, submissionDuration, submissionInFlight, rejectedTotal, staleTotal, gatewayTotal, gatewayDuration)

	return &WorkflowMetrics{
		registry:           registry,
		service:            service,
		submissionsTotal:   submissionsTotal,
		submissionDuration: submissionDuration,
		submissionInFlight: submissionInFlight,
		rejectedTotal:      rejectedTotal,
		staleTotal:         staleTotal,
		gatewayTotal:       gatewayTotal,
		gatewayDuration:    gatewayDuration,
	}
}

func (m *WorkflowMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkflowMetrics) SubmissionRejected(kind domain.SubmissionKind, reason string) {
	m.rejectedTotal.WithLabelValues(m.service, string(kind), reason).Inc()
}

func (m *WorkflowMetrics) SubmissionStarted(domain.SubmissionKind) {
	m.submissionInFlight.Inc()
}

func (m *WorkflowMetrics) SubmissionFinished(kind domain.SubmissionKind, outcome string, duration time.Duration) {
	m.submissionInFlight.Dec()
	m.submissionsTotal.WithLabelValues(m.service, string(kind), outcome).Inc()
	m.submissionDuration.WithLabelValues(m.service, string(kind), outcome).Observe(duration.Seconds())
}

func (m *WorkflowMetrics) StaleResponseDiscarded(operation string) {
	m.staleTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *WorkflowMetrics) ObserveGatewayCall(operation, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.gatewayTotal.WithLabelValues(m.service, operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
}
