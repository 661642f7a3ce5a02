package tracing

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/ComputeEngine/internal/shared/id"
)

// HTTPMiddleware creates Gin middleware for HTTP tracing.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithSpan(c.Request.Context(),
			id.TraceID(c.GetHeader(HeaderTraceID)),
			id.SpanID(c.GetHeader(HeaderSpanID)),
		)

		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		tracer.Finish(span)
	}
}

// GRPCUnaryInterceptor creates a gRPC unary server interceptor for tracing.
func GRPCUnaryInterceptor(tracer *Tracer) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = WithSpan(ctx, id.TraceID(first(md, MetadataTraceID)), id.SpanID(first(md, MetadataSpanID)))
		}

		span, ctx := tracer.StartSpan(ctx, info.FullMethod)
		span.SetTag("rpc.system", "grpc")

		resp, err := handler(ctx, req)

		span.SetTag("rpc.code", status.Code(err).String())
		if err != nil {
			span.SetError(err)
		}
		tracer.Finish(span)

		return resp, err
	}
}

// GRPCClientInterceptor creates a gRPC client interceptor that opens a client
// span and propagates it in outgoing metadata.
func GRPCClientInterceptor(tracer *Tracer) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		span, ctx := tracer.StartSpan(ctx, method)
		span.SetTag("rpc.system", "grpc")
		span.SetTag("span.kind", "client")

		ctx = metadata.AppendToOutgoingContext(ctx,
			MetadataTraceID, string(span.TraceID),
			MetadataSpanID, string(span.SpanID),
		)

		err := invoker(ctx, method, req, reply, cc, opts...)

		span.SetTag("rpc.code", status.Code(err).String())
		if err != nil {
			span.SetError(err)
		}
		tracer.Finish(span)

		return err
	}
}

func first(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
