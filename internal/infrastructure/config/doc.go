// Package config provides 12-factor configuration for the compute engine.
//
// Defaults live in Default(). An optional YAML or TOML file is layered on top,
// then environment variables, then CLI flags in cmd/server. Only variables
// that are actually set override earlier layers.
//
// Configuration Sections:
//   - Server: gRPC listener, HTTP gateway, connection and message limits
//   - Engine: reply policy for rejected requests and input bounds
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting on the gateway and gRPC server
//
// Example Usage:
//
//	cfg, err := config.LoadFile("engine.yaml")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("engine on %s\n", cfg.Server.GRPCAddr())
//
// Environment Variables:
//   - GRPC_HOST, GRPC_PORT, HTTP_PORT, HTTP_ENABLED, MAX_CONNECTIONS, MAX_MSG_MB
//   - ENGINE_REPLY_POLICY, ENGINE_MAX_SAMPLES, ENGINE_MAX_MATRIX_ELEMENTS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
