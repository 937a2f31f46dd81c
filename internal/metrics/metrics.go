package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the club server.
type Metrics struct {
	registry *prometheus.Registry

	// gRPC metrics
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec

	// Membership metrics
	MembershipTransitionsTotal *prometheus.CounterVec
	LedgerChargesTotal         *prometheus.CounterVec

	// Job metrics
	JobRunsTotal      *prometheus.CounterVec
	JobItemsProcessed *prometheus.CounterVec
}

// NewMetrics creates all collectors and registers them with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		GRPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubserver_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		GRPCRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clubserver_grpc_request_duration_seconds",
				Help:    "gRPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		MembershipTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubserver_membership_transitions_total",
				Help: "Total number of membership state transitions",
			},
			[]string{"transition"},
		),
		LedgerChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubserver_ledger_charges_total",
				Help: "Total number of membership charges sent to the ledger",
			},
			[]string{"outcome"},
		),
		JobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubserver_job_runs_total",
				Help: "Total number of background job runs",
			},
			[]string{"job", "status"},
		),
		JobItemsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clubserver_job_items_processed_total",
				Help: "Total number of rows processed by background jobs",
			},
			[]string{"job"},
		),
	}

	registry.MustRegister(
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.MembershipTransitionsTotal,
		m.LedgerChargesTotal,
		m.JobRunsTotal,
		m.JobItemsProcessed,
	)

	return m
}

// MembershipTransition counts a membership state change such as "membership.upgraded".
func (m *Metrics) MembershipTransition(transition string) {
	m.MembershipTransitionsTotal.WithLabelValues(transition).Inc()
}

// LedgerCharge counts a charge attempt by outcome.
func (m *Metrics) LedgerCharge(outcome string) {
	m.LedgerChargesTotal.WithLabelValues(outcome).Inc()
}

// ObserveGRPC records a finished unary call.
func (m *Metrics) ObserveGRPC(method, code string, elapsed time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// JobRun records the outcome of one scheduled job execution.
func (m *Metrics) JobRun(job string, processed int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	if processed > 0 {
		m.JobItemsProcessed.WithLabelValues(job).Add(float64(processed))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
