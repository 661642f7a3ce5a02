package grpc

import (
	"context"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
)

const healthPrefix = "/grpc.health.v1."

// MetadataRequestID carries a caller-chosen request id, logged with the call.
const MetadataRequestID = "x-request-id"

// methodName trims "/engine.EngineService/MatMul" to "MatMul".
func methodName(fullMethod string) string {
	return path.Base(fullMethod)
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(MetadataRequestID); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// RecoveryInterceptor turns handler panics into codes.Internal.
func RecoveryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic", append(tracing.Fields(ctx),
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)...)
				resp, err = nil, status.Errorf(codes.Internal, "internal error in %s", methodName(info.FullMethod))
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every call: Debug on success, Warn otherwise.
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := append(tracing.Fields(ctx),
			zap.String("method", info.FullMethod),
			zap.String("request_id", requestID(ctx)),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("duration", time.Since(start)),
		)
		if err != nil {
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("rpc", fields...)
		}
		return resp, err
	}
}

// MetricsInterceptor records call counts, latency and in-flight calls.
func MetricsInterceptor(metrics *monitoring.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		timer := monitoring.NewTimer(metrics, methodName(info.FullMethod))
		resp, err := handler(ctx, req)
		timer.Stop(status.Code(err).String())
		return resp, err
	}
}

// RateLimitInterceptor rejects calls beyond limiter with
// codes.ResourceExhausted. Health checks and calls for which exempt reports
// true are never limited. exempt may be nil.
func RateLimitInterceptor(limiter *rate.Limiter, exempt func(context.Context) bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) || (exempt != nil && exempt(ctx)) {
			return handler(ctx, req)
		}
		if !limiter.Allow() {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
