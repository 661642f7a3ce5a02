/*
Package monitoring provides Prometheus metrics for the engine.

# Overview

Metrics are registered on a caller-supplied registry so tests and multiple
servers in one process never collide on the global default registry.

# Families

- engine_grpc_calls_total, engine_grpc_duration_seconds, engine_grpc_in_flight
- engine_validation_failures_total{method,reason}
- engine_pi_samples_total, engine_matmul_multiply_adds_total, engine_stats_values_total
- engine_http_requests_total and friends for the gateway
- engine_uptime_seconds

# Usage

	reg := monitoring.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "MatMul")
	// ... dispatch ...
	timer.Stop("OK")
*/
package monitoring
