package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/shared/id"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("engine", logging.Wrap(zap.New(core))), logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, child.SpanID, SpanIDFrom(childCtx))
	assert.True(t, id.IsValid(string(root.TraceID)))
}

func TestCloseDrainsSpans(t *testing.T) {
	tracer, logs := newObservedTracer()

	ok, _ := tracer.StartSpan(context.Background(), "ok")
	ok.SetTag("shape", "2x3")
	tracer.Finish(ok)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	tracer.Finish(failed)

	tracer.Close()
	tracer.Close()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "2x3", entries[0].ContextMap()["shape"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestFinishAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newObservedTracer()

	late, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Close()

	require.NotPanics(t, func() { tracer.Finish(late) })
	assert.Zero(t, logs.Len())
}

func TestFields(t *testing.T) {
	assert.Nil(t, Fields(context.Background()))

	ctx := WithSpan(context.Background(), "trc_1", "spn_1")
	assert.Len(t, Fields(ctx), 2)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	var seen id.TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/engine/hello", func(c *gin.Context) {
		seen = TraceIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/engine/hello", nil)
	req.Header.Set(HeaderTraceID, "trc_upstream")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	tracer.Close()

	assert.Equal(t, id.TraceID("trc_upstream"), seen)
	assert.Equal(t, "trc_upstream", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GET /engine/hello", logs.All()[0].ContextMap()["operation"])
	assert.Equal(t, "200", logs.All()[0].ContextMap()["http.status"])
}

func TestGRPCInterceptorsPropagate(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	client := GRPCClientInterceptor(tracer)
	server := GRPCUnaryInterceptor(tracer)

	root, ctx := tracer.StartSpan(context.Background(), "enginectl")

	var serverTrace id.TraceID

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		// Hand the outgoing metadata to the server side as incoming.
		md, _ := metadata.FromOutgoingContext(ctx)
		inCtx := metadata.NewIncomingContext(context.Background(), md)
		_, err := server(inCtx, req, &grpc.UnaryServerInfo{FullMethod: method},
			func(ctx context.Context, req interface{}) (interface{}, error) {
				serverTrace = TraceIDFrom(ctx)
				return nil, nil
			})
		return err
	}

	require.NoError(t, client(ctx, "/engine.EngineService/Greet", nil, nil, nil, invoker))
	assert.Equal(t, root.TraceID, serverTrace)
}
