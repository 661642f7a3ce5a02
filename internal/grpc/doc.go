// Package grpc serves engine.EngineService.
//
// EngineService adapts the domain engine to the wire messages in proto/engine
// and applies the configured reply policy to rejected requests. NewServer
// wraps it in a grpc.Server with recovery, tracing, metrics, logging and
// rate-limit interceptors plus the standard health service.
//
// Example:
//
//	svc := grpc.NewEngineService(engine.New(), grpc.ReplySentinel, logger, metrics)
//	srv := grpc.NewServer(svc, grpc.ServerOptions{Logger: logger, Metrics: metrics})
//	srv.Serve(lis)
package grpc
