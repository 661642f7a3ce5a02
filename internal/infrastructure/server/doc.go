// Package server assembles the engine process: config, logger, metrics,
// tracer, the gRPC server and the optional HTTP gateway. Run serves both
// under one errgroup; Close drains them and flushes logs.
package server
