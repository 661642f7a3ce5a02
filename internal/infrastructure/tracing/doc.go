/*
Package tracing provides lightweight request tracing for the engine.

# Overview

A trace follows one request from enginectl or the HTTP gateway into the gRPC
engine. Spans carry ULID trace and span ids from internal/shared/id and are
written to the zap logger by a single collector goroutine.

# Usage

	tracer := tracing.New("engine", logger)
	defer tracer.Close()

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// gRPC server and client interceptors
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(tracing.GRPCUnaryInterceptor(tracer)))
	conn, err := grpc.NewClient(addr, grpc.WithUnaryInterceptor(tracing.GRPCClientInterceptor(tracer)))

	// Manual spans
	span, ctx := tracer.StartSpan(ctx, "matmul")
	defer tracer.Finish(span)
	span.SetTag("shape", "2x3*3x2")

# Propagation

HTTP uses the X-Trace-ID and X-Span-ID headers; gRPC uses the x-trace-id and
x-span-id metadata keys.

# Buffering

Finished spans go through a 1000-entry buffer. When it is full the span is
dropped with a warning rather than blocking the request path.
*/
package tracing
