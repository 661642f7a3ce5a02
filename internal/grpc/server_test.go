package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/GriffinCanCode/ComputeEngine/internal/domain/engine"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// serve starts srv on an in-memory listener and returns a connection to it.
func serve(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		<-done
	})
	return conn
}

type panicky struct {
	pb.UnimplementedEngineServiceServer
}

func (panicky) Greet(context.Context, *pb.GreetRequest) (*pb.GreetReply, error) {
	panic("boom")
}

func TestServerEndToEnd(t *testing.T) {
	metrics := monitoring.NewMetrics(nil)
	svc := NewEngineService(engine.New(), ReplyStatus, nil, metrics)
	conn := serve(t, NewServer(svc, ServerOptions{Metrics: metrics, MaxMessageBytes: 4 << 20}))
	client := pb.NewEngineServiceClient(conn)
	ctx := context.Background()

	greet, err := client.Greet(ctx, &pb.GreetRequest{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada from Go Engine!", greet.GetMessage())

	mat, err := client.MatMul(ctx, &pb.MatMulRequest{
		A: &pb.Matrix{Rows: 2, Cols: 3, Data: []float64{1, 2, 3, 4, 5, 6}},
		B: &pb.Matrix{Rows: 3, Cols: 2, Data: []float64{7, 8, 9, 10, 11, 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{58, 64, 139, 154}, mat.GetC().GetData())

	_, err = client.EstimatePi(ctx, &pb.PiRequest{Samples: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GRPCCalls.WithLabelValues("Greet", "OK")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GRPCCalls.WithLabelValues("EstimatePi", "InvalidArgument")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.GRPCInFlight))
}

func TestServerSentinelOverTheWire(t *testing.T) {
	svc := NewEngineService(engine.New(), ReplySentinel, nil, nil)
	client := pb.NewEngineServiceClient(serve(t, NewServer(svc, ServerOptions{})))
	ctx := context.Background()

	pi, err := client.EstimatePi(ctx, &pb.PiRequest{Samples: 0})
	require.NoError(t, err)
	assert.Zero(t, pi.GetTotal())
	assert.Zero(t, pi.GetPiEstimate())

	mat, err := client.MatMul(ctx, &pb.MatMulRequest{
		A: &pb.Matrix{Rows: 1, Cols: 2, Data: []float64{1, 2}},
		B: &pb.Matrix{Rows: 3, Cols: 1, Data: []float64{1, 2, 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, mat.GetC())
	assert.Zero(t, mat.GetC().GetRows())
	assert.Empty(t, mat.GetC().GetData())
}

func TestServerHealth(t *testing.T) {
	svc := NewEngineService(engine.New(), ReplySentinel, nil, nil)
	health := healthpb.NewHealthClient(serve(t, NewServer(svc, ServerOptions{})))

	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	srv := NewServer(panicky{}, ServerOptions{Logger: logging.Wrap(zap.New(core))})
	client := pb.NewEngineServiceClient(serve(t, srv))

	_, err := client.Greet(context.Background(), &pb.GreetRequest{Name: "x"})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())

	// The server survives and keeps answering.
	_, err = client.EstimatePi(context.Background(), &pb.PiRequest{Samples: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRateLimitInterceptor(t *testing.T) {
	svc := NewEngineService(engine.New(), ReplySentinel, nil, nil)
	conn := serve(t, NewServer(svc, ServerOptions{RequestsPerSecond: 1, Burst: 2}))
	client := pb.NewEngineServiceClient(conn)
	ctx := context.Background()

	var exhausted int
	for i := 0; i < 5; i++ {
		if _, err := client.Greet(ctx, &pb.GreetRequest{}); status.Code(err) == codes.ResourceExhausted {
			exhausted++
		}
	}
	assert.GreaterOrEqual(t, exhausted, 2)

	_, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	assert.NoError(t, err, "health checks bypass the limiter")
}

func TestRateLimitExempt(t *testing.T) {
	exempt := func(ctx context.Context) bool {
		md, _ := metadata.FromIncomingContext(ctx)
		return len(md.Get("x-exempt")) > 0
	}
	svc := NewEngineService(engine.New(), ReplySentinel, nil, nil)
	conn := serve(t, NewServer(svc, ServerOptions{RequestsPerSecond: 1, Burst: 1, RateLimitExempt: exempt}))
	client := pb.NewEngineServiceClient(conn)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-exempt", "1")
	for i := 0; i < 5; i++ {
		_, err := client.Greet(ctx, &pb.GreetRequest{})
		require.NoError(t, err)
	}

	// Exempt calls leave the bucket untouched.
	_, err := client.Greet(context.Background(), &pb.GreetRequest{})
	require.NoError(t, err)
	_, err = client.Greet(context.Background(), &pb.GreetRequest{})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestTracingPropagatesToLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.Wrap(zap.New(core))
	tracer := tracing.New("engine-test", logger)
	t.Cleanup(tracer.Close)

	svc := NewEngineService(engine.New(), ReplySentinel, logger, nil)
	client := pb.NewEngineServiceClient(serve(t, NewServer(svc, ServerOptions{Logger: logger, Tracer: tracer})))

	_, err := client.EstimatePi(context.Background(), &pb.PiRequest{Samples: 0})
	require.NoError(t, err)

	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	assert.NotEmpty(t, rejected[0].ContextMap()["trace_id"])
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "MatMul", methodName(pb.EngineService_MatMul_FullMethodName))
}

func TestLoggingInterceptorRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.Wrap(zap.New(core))
	svc := NewEngineService(engine.New(), ReplySentinel, nil, nil)
	client := pb.NewEngineServiceClient(serve(t, NewServer(svc, ServerOptions{Logger: logger})))

	ctx := metadata.AppendToOutgoingContext(context.Background(), MetadataRequestID, "req-123")
	_, err := client.Greet(ctx, &pb.GreetRequest{Name: "Ada"})
	require.NoError(t, err)

	entries := logs.FilterMessage("rpc").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}
