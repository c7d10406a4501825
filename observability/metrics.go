// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the RPC Surface, grounded on coreengine/observability's own
// metrics.go/tracing.go structure, renamed to this library's metric
// families.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exposerpc_invocations_total",
			Help: "Total number of CALLABLE invocations",
		},
		[]string{"container", "member", "status"}, // status: success, error
	)

	invocationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exposerpc_invocation_duration_seconds",
			Help:    "CALLABLE invocation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"container", "member"},
	)

	writesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exposerpc_writes_total",
			Help: "Total number of DATUM write attempts",
		},
		[]string{"container", "datum", "status"}, // status: success, rejected
	)

	authChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exposerpc_auth_checks_total",
			Help: "Total number of Authenticator checks",
		},
		[]string{"family", "status"}, // status: failure (recorded from AuthFailure events)
	)

	tokenCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exposerpc_token_cache_size",
			Help: "Current number of entries in the token validation cache",
		},
	)

	tokenCacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exposerpc_token_cache_evictions_total",
			Help: "Total number of token cache entries pruned",
		},
		[]string{"reason"}, // reason: expired
	)

	grpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exposerpc_grpc_requests_total",
			Help: "Total gRPC requests handled by the RPC surface",
		},
		[]string{"method", "code"},
	)

	grpcRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exposerpc_grpc_request_duration_seconds",
			Help:    "gRPC request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)
)

// RecordInvocation records a CALLABLE invocation's outcome and duration.
func RecordInvocation(container, member, status string, durationMS int) {
	invocationsTotal.WithLabelValues(container, member, status).Inc()
	invocationDurationSeconds.WithLabelValues(container, member).Observe(float64(durationMS) / 1000.0)
}

// RecordWrite records a DATUM write attempt's outcome.
func RecordWrite(container, datum, status string) {
	writesTotal.WithLabelValues(container, datum, status).Inc()
}

// RecordAuthCheck records an Authenticator check's outcome for a given
// credential family.
func RecordAuthCheck(family, status string) {
	authChecksTotal.WithLabelValues(family, status).Inc()
}

// SetTokenCacheSize reports the current token cache occupancy.
func SetTokenCacheSize(n int) {
	tokenCacheSize.Set(float64(n))
}

// RecordTokenCacheEviction records a pruned token cache entry.
func RecordTokenCacheEviction(reason string) {
	tokenCacheEvictionsTotal.WithLabelValues(reason).Inc()
}

// RecordGRPCRequest records a request handled at the RPC surface, called
// from the server's interceptor chain.
func RecordGRPCRequest(method, code string, durationMS int) {
	grpcRequestsTotal.WithLabelValues(method, code).Inc()
	grpcRequestDurationSeconds.WithLabelValues(method).Observe(float64(durationMS) / 1000.0)
}
