package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	gateway "github.com/GriffinCanCode/ComputeEngine/internal/api/http"
	"github.com/GriffinCanCode/ComputeEngine/internal/api/middleware"
	"github.com/GriffinCanCode/ComputeEngine/internal/domain/engine"
	enginegrpc "github.com/GriffinCanCode/ComputeEngine/internal/grpc"
	engineclient "github.com/GriffinCanCode/ComputeEngine/internal/grpc/engine"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/config"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
)

// ShutdownTimeout bounds graceful draining of both listeners.
const ShutdownTimeout = 10 * time.Second

// Server runs the gRPC engine and, when enabled, the HTTP gateway in front
// of it.
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	grpc     *enginegrpc.Server
	grpcLis  net.Listener
	http     *http.Server
	httpLis  net.Listener
	upstream *engineclient.Client
	gwConns  *gatewayConns

	stopOnce  sync.Once
	stopped   chan struct{}
	closeOnce sync.Once
}

// Option customizes NewServer.
type Option func(*options)

type options struct {
	logger *logging.Logger
	engine []engine.Option
}

// WithLogger replaces the logger built from cfg.Logging.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineOptions passes options to the domain engine, e.g. a seed source.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) { o.engine = append(o.engine, opts...) }
}

// NewServer wires every component and opens the listeners. Nothing is
// served until Run.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		lc := logging.DefaultConfig()
		if cfg.Logging.Development {
			lc = logging.DevelopmentConfig()
		}
		if cfg.Logging.Level != "" {
			lc.Level = cfg.Logging.Level
		}
		var err error
		logger, err = logging.New(lc)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	policy, err := enginegrpc.ParseReplyPolicy(cfg.Engine.ReplyPolicy)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing compute engine",
		zap.String("grpc_addr", cfg.Server.GRPCAddr()),
		zap.Bool("http_enabled", cfg.Server.HTTPEnabled),
		zap.Stringer("reply_policy", policy),
		zap.Int64("max_samples", cfg.Engine.MaxSamples),
		zap.Int64("max_matrix_elements", cfg.Engine.MaxMatrixElements),
	)

	metrics := monitoring.NewMetrics(monitoring.NewRegistry())
	tracer := tracing.New("engine", logger)

	limits := engine.Limits{
		MaxSamples:        cfg.Engine.MaxSamples,
		MaxMatrixElements: cfg.Engine.MaxMatrixElements,
	}
	eng := engine.New(append([]engine.Option{engine.WithLimits(limits)}, o.engine...)...)

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		stopped: make(chan struct{}),
		gwConns: newGatewayConns(),
	}

	grpcOpts := enginegrpc.ServerOptions{
		Logger:          logger,
		Metrics:         metrics,
		Tracer:          tracer,
		MaxMessageBytes: cfg.Server.MaxMessageBytes(),
	}
	if cfg.RateLimit.Enabled {
		grpcOpts.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		grpcOpts.Burst = cfg.RateLimit.Burst
		if cfg.Server.HTTPEnabled {
			// Gateway traffic is limited per client IP at the HTTP layer.
			grpcOpts.RateLimitExempt = s.gwConns.owns
		}
	}
	s.grpc = enginegrpc.NewServer(enginegrpc.NewEngineService(eng, policy, logger, metrics), grpcOpts)

	s.grpcLis, err = net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr(), err)
	}
	if n := cfg.Server.MaxConnections; n > 0 {
		s.grpcLis = netutil.LimitListener(s.grpcLis, n)
	}

	if cfg.Server.HTTPEnabled {
		if err := s.initGateway(limits); err != nil {
			_ = s.grpcLis.Close()
			tracer.Close()
			return nil, err
		}
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// initGateway dials the local gRPC listener and builds the HTTP server.
func (s *Server) initGateway(limits engine.Limits) error {
	cfg := s.config

	upstream, err := engineclient.New(dialAddr(s.grpcLis.Addr()), engineclient.Options{
		MaxMessageBytes: cfg.Server.MaxMessageBytes(),
		Tracer:          s.tracer,
		DialOptions:     []grpc.DialOption{grpc.WithContextDialer(s.gwConns.dial)},
	})
	if err != nil {
		return err
	}

	var rl *middleware.RateLimitConfig
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		perClient := middleware.DefaultRateLimitConfig()
		perClient.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		perClient.Burst = cfg.RateLimit.Burst
		rl = &perClient
	}

	handlers := gateway.NewHandlers(upstream, limits, s.metrics, s.logger)
	router := gateway.NewRouter(handlers, gateway.RouterConfig{
		Tracer:       s.tracer,
		Metrics:      s.metrics,
		RateLimit:    rl,
		MaxBodyBytes: int64(cfg.Server.MaxMessageBytes()),
		Development:  cfg.Logging.Development,
	})

	lis, err := net.Listen("tcp", cfg.Server.HTTPAddr())
	if err != nil {
		_ = upstream.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.HTTPAddr(), err)
	}

	s.upstream = upstream
	s.httpLis = lis
	s.http = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return nil
}

// dialAddr turns a wildcard listen address into one a client can dial.
func dialAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return addr.String()
	}
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		return net.JoinHostPort("localhost", fmt.Sprint(tcp.Port))
	}
	return tcp.String()
}

// GRPCAddr is the bound gRPC address.
func (s *Server) GRPCAddr() string {
	return s.grpcLis.Addr().String()
}

// HTTPAddr is the bound gateway address, or "" when the gateway is disabled.
func (s *Server) HTTPAddr() string {
	if s.httpLis == nil {
		return ""
	}
	return s.httpLis.Addr().String()
}

// Metrics exposes the server's metrics.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled or a listener fails, then drains both
// servers. It returns the first serve error, if any.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting gRPC server", zap.String("addr", s.GRPCAddr()))
		if err := s.grpc.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	if s.http != nil {
		g.Go(func() error {
			s.logger.Info("Starting HTTP gateway", zap.String("addr", s.HTTPAddr()))
			if err := s.http.Serve(s.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http serve: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.stop()
		case <-s.stopped:
		}
		return nil
	})

	return g.Wait()
}

// stop drains the gateway first, then the gRPC server.
func (s *Server) stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if s.http != nil {
			if err := s.http.Shutdown(ctx); err != nil {
				s.logger.Warn("HTTP shutdown incomplete", zap.Error(err))
				_ = s.http.Close()
			}
		}
		if s.upstream != nil {
			if err := s.upstream.Close(); err != nil {
				s.logger.Warn("Failed to close gateway client", zap.Error(err))
			}
		}

		done := make(chan struct{})
		go func() {
			s.grpc.Shutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("gRPC drain timed out, forcing stop")
			s.grpc.Stop()
			<-done
		}
		close(s.stopped)
	})
}

// Close stops serving if Run is still active, flushes spans and syncs the
// logger. It is safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.stop()
		// Listeners are closed by Stop/Shutdown when served; close them
		// again for servers that never ran.
		_ = s.grpcLis.Close()
		if s.httpLis != nil {
			_ = s.httpLis.Close()
		}
		s.tracer.Close()
		s.logger.Info("Server stopped")
		s.logger.Sync()
	})
	return nil
}
