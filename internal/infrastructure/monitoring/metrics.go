package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "engine"

var latencyBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP gateway metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// gRPC metrics
	GRPCCalls    *prometheus.CounterVec
	GRPCDuration *prometheus.HistogramVec
	GRPCInFlight prometheus.Gauge

	// Engine metrics
	ValidationFailures *prometheus.CounterVec
	PiSamples          prometheus.Counter
	MatMulOps          prometheus.Counter
	StatsValues        prometheus.Counter

	gatherer  prometheus.Gatherer
	startTime time.Time

	// Snapshot for the JSON endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON metrics endpoint.
type Snapshot struct {
	Calls              int64   `json:"calls"`
	Errors             int64   `json:"errors"`
	ValidationFailures int64   `json:"validation_failures"`
	HTTPRequests       int64   `json:"http_requests"`
	TotalDuration      float64 `json:"total_duration_seconds"`
	AvgDuration        float64 `json:"avg_duration_seconds"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics registers the engine metrics on reg. A nil reg gets a fresh
// registry without runtime collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		gatherer:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP gateway requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP gateway request duration in seconds",
				Buckets:   latencyBuckets,
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP gateway request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP gateway response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path"},
		),

		GRPCCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_calls_total",
				Help:      "Total number of gRPC calls by method and status code",
			},
			[]string{"method", "code"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_duration_seconds",
				Help:      "gRPC call duration in seconds",
				Buckets:   latencyBuckets,
			},
			[]string{"method"},
		),
		GRPCInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "grpc_in_flight",
				Help:      "Number of gRPC calls being served",
			},
		),

		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Requests rejected by validation, by method and reason",
			},
			[]string{"method", "reason"},
		),
		PiSamples: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pi_samples_total",
				Help:      "Monte Carlo samples drawn",
			},
		),
		MatMulOps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matmul_multiply_adds_total",
				Help:      "Upper bound on multiply-add operations requested",
			},
		),
		StatsValues: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_values_total",
				Help:      "Values summarized by ComputeStats",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Engine uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a gateway request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.HTTPRequests++
	m.mu.Unlock()
}

// RecordGRPCCall records a finished gRPC call. code is the grpc status
// code name ("OK", "InvalidArgument", ...).
func (m *Metrics) RecordGRPCCall(method, code string, duration time.Duration) {
	m.GRPCCalls.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Calls++
	m.snapshot.TotalDuration += duration.Seconds()
	if code != "OK" {
		m.snapshot.Errors++
	}
	m.mu.Unlock()
}

// RecordValidationFailure counts a rejected request.
func (m *Metrics) RecordValidationFailure(method, reason string) {
	m.ValidationFailures.WithLabelValues(method, reason).Inc()

	m.mu.Lock()
	m.snapshot.ValidationFailures++
	m.mu.Unlock()
}

// AddPiSamples counts Monte Carlo samples drawn.
func (m *Metrics) AddPiSamples(n int64) {
	m.PiSamples.Add(float64(n))
}

// AddMatMulOps counts multiply-adds requested.
func (m *Metrics) AddMatMulOps(n int64) {
	m.MatMulOps.Add(float64(n))
}

// AddStatsValues counts summarized values.
func (m *Metrics) AddStatsValues(n int) {
	m.StatsValues.Add(float64(n))
}

// Snapshot returns a copy of the running totals.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.Calls > 0 {
		s.AvgDuration = s.TotalDuration / float64(s.Calls)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
