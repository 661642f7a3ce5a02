// Package engine is a typed client for engine.EngineService with a circuit
// breaker in front of every call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/ComputeEngine/internal/grpc/compression"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// DefaultTimeout bounds a call when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// Options configures New.
type Options struct {
	// Timeout applies to calls whose context has no deadline. Zero means
	// DefaultTimeout.
	Timeout time.Duration
	// MaxMessageBytes caps request and reply sizes. Zero means 64MB.
	MaxMessageBytes int
	// Compress sends requests zstd-compressed.
	Compress bool
	// Tracer propagates trace ids in outgoing metadata when set.
	Tracer *tracing.Tracer
	// DialOptions are appended last, e.g. a bufconn dialer in tests.
	DialOptions []grpc.DialOption
}

// Client wraps the generated client with connection management.
type Client struct {
	conn     *grpc.ClientConn
	client   pb.EngineServiceClient
	health   healthpb.HealthClient
	addr     string
	breaker  *resilience.Breaker
	timeout  time.Duration
	callOpts []grpc.CallOption
}

// New creates a client for addr. The connection is established lazily on
// the first call.
func New(addr string, opts Options) (*Client, error) {
	maxMsg := opts.MaxMessageBytes
	if maxMsg <= 0 {
		maxMsg = 64 << 20
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMsg),
			grpc.MaxCallSendMsgSize(maxMsg),
		),
	}
	if opts.Tracer != nil {
		dialOpts = append(dialOpts, grpc.WithChainUnaryInterceptor(tracing.GRPCClientInterceptor(opts.Tracer)))
	}
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client for %s: %w", addr, err)
	}

	var callOpts []grpc.CallOption
	if opts.Compress {
		callOpts = append(callOpts, grpc.UseCompressor(compression.Name))
	}

	return &Client{
		conn:     conn,
		client:   pb.NewEngineServiceClient(conn),
		health:   healthpb.NewHealthClient(conn),
		addr:     addr,
		breaker:  newBreaker(addr),
		timeout:  timeout,
		callOpts: callOpts,
	}, nil
}

func newBreaker(addr string) *resilience.Breaker {
	return resilience.New("engine:"+addr, resilience.Settings{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.5)
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful counts caller mistakes as healthy responses; only transport
// and server faults move the breaker.
func isSuccessful(err error) bool {
	switch status.Code(err) {
	case codes.OK, codes.InvalidArgument, codes.Canceled:
		return true
	default:
		return false
	}
}

// Addr returns the target address.
func (c *Client) Addr() string {
	return c.addr
}

// Breaker exposes the circuit breaker for inspection.
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Greet returns the server's greeting for name.
func (c *Client) Greet(ctx context.Context, name string) (string, error) {
	reply, err := call(c, ctx, "greet", func(ctx context.Context) (*pb.GreetReply, error) {
		return c.client.Greet(ctx, &pb.GreetRequest{Name: name}, c.callOpts...)
	})
	if err != nil {
		return "", err
	}
	return reply.GetMessage(), nil
}

// EstimatePi asks for a Monte Carlo estimate over samples points.
func (c *Client) EstimatePi(ctx context.Context, samples int64) (*pb.PiReply, error) {
	return call(c, ctx, "estimate pi", func(ctx context.Context) (*pb.PiReply, error) {
		return c.client.EstimatePi(ctx, &pb.PiRequest{Samples: samples}, c.callOpts...)
	})
}

// MatMul multiplies a by b on the server.
func (c *Client) MatMul(ctx context.Context, a, b *pb.Matrix) (*pb.Matrix, error) {
	reply, err := call(c, ctx, "matmul", func(ctx context.Context) (*pb.MatReply, error) {
		return c.client.MatMul(ctx, &pb.MatMulRequest{A: a, B: b}, c.callOpts...)
	})
	if err != nil {
		return nil, err
	}
	if reply.GetC() == nil {
		return &pb.Matrix{}, nil
	}
	return reply.GetC(), nil
}

// ComputeStats summarizes data on the server.
func (c *Client) ComputeStats(ctx context.Context, data []float64, sample bool) (*pb.VectorStatsReply, error) {
	return call(c, ctx, "compute stats", func(ctx context.Context) (*pb.VectorStatsReply, error) {
		return c.client.ComputeStats(ctx, &pb.VectorStatsRequest{Data: data, Sample: sample}, c.callOpts...)
	})
}

// Ping checks the health service. It does not go through the breaker.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("engine not serving: %s", resp.GetStatus())
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func call[T any](c *Client, ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	reply, err := resilience.Do(c.breaker, func() (T, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
			return zero, fmt.Errorf("engine service unavailable: %w", err)
		}
		return zero, fmt.Errorf("%s failed: %w", op, err)
	}
	return reply, nil
}
