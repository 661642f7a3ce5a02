package grpc

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	_ "github.com/GriffinCanCode/ComputeEngine/internal/grpc/compression"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// ServerOptions configures NewServer. Zero values disable the optional parts.
type ServerOptions struct {
	Logger          *logging.Logger
	Metrics         *monitoring.Metrics
	Tracer          *tracing.Tracer
	MaxMessageBytes int
	// RequestsPerSecond and Burst enable a server-wide rate limit when both
	// are positive.
	RequestsPerSecond int
	Burst             int
	// RateLimitExempt selects calls that bypass the rate limit, e.g. those
	// from a gateway that limits its own clients.
	RateLimitExempt func(context.Context) bool
}

// Server is a grpc.Server serving EngineService and grpc.health.v1.
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer builds the gRPC server around svc. Interceptors run in order:
// recovery, tracing, metrics, logging, rate limit.
func NewServer(svc pb.EngineServiceServer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("grpc")

	interceptors := []grpc.UnaryServerInterceptor{RecoveryInterceptor(logger)}
	if opts.Tracer != nil {
		interceptors = append(interceptors, tracing.GRPCUnaryInterceptor(opts.Tracer))
	}
	if opts.Metrics != nil {
		interceptors = append(interceptors, MetricsInterceptor(opts.Metrics))
	}
	interceptors = append(interceptors, LoggingInterceptor(logger))
	if opts.RequestsPerSecond > 0 && opts.Burst > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
		interceptors = append(interceptors, RateLimitInterceptor(limiter, opts.RateLimitExempt))
	}

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(interceptors...),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              2 * time.Minute,
			Timeout:           20 * time.Second,
		}),
		// Clients ping at most every 60s and only with active streams.
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: false,
		}),
	}
	if opts.MaxMessageBytes > 0 {
		serverOpts = append(serverOpts,
			grpc.MaxRecvMsgSize(opts.MaxMessageBytes),
			grpc.MaxSendMsgSize(opts.MaxMessageBytes),
		)
	}

	s := grpc.NewServer(serverOpts...)
	pb.RegisterEngineServiceServer(s, svc)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &Server{Server: s, health: hs}
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
