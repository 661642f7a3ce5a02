package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/ComputeEngine/internal/api/middleware"
	"github.com/GriffinCanCode/ComputeEngine/internal/compute/matrix"
	"github.com/GriffinCanCode/ComputeEngine/internal/domain/engine"
	enginegrpc "github.com/GriffinCanCode/ComputeEngine/internal/grpc"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// Backend is the engine as seen by the gateway. The gRPC client implements it.
type Backend interface {
	Greet(ctx context.Context, name string) (string, error)
	EstimatePi(ctx context.Context, samples int64) (*pb.PiReply, error)
	MatMul(ctx context.Context, a, b *pb.Matrix) (*pb.Matrix, error)
	ComputeStats(ctx context.Context, data []float64, sample bool) (*pb.VectorStatsReply, error)
	Ping(ctx context.Context) error
}

// Per-route deadlines for the backend call.
const (
	helloTimeout  = 2 * time.Second
	piTimeout     = 4 * time.Second
	matmulTimeout = 6 * time.Second
	statsTimeout  = 3 * time.Second
	healthTimeout = time.Second
)

// Handlers serves the /engine routes.
type Handlers struct {
	backend Backend
	limits  engine.Limits
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// NewHandlers creates the route handlers. Requests are checked against
// limits before they reach the backend.
func NewHandlers(backend Backend, limits engine.Limits, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		backend: backend,
		limits:  limits,
		metrics: metrics,
		logger:  logger.Named("gateway"),
	}
}

// Register mounts the engine routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	g := r.Group("/engine")
	g.GET("/hello", h.Hello)
	g.POST("/pi", h.Pi)
	g.POST("/matmul", h.MatMul)
	g.POST("/stats", h.Stats)
}

// Hello handles GET /engine/hello?name=.
func (h *Handlers) Hello(c *gin.Context) {
	name := c.DefaultQuery("name", "World")

	ctx, cancel := callContext(c, helloTimeout)
	defer cancel()

	msg, err := h.backend.Greet(ctx, name)
	if err != nil {
		h.backendError(c, engine.OpGreet, err)
		return
	}
	render(c, http.StatusOK, gin.H{"message": msg})
}

// Pi handles POST /engine/pi.
func (h *Handlers) Pi(c *gin.Context) {
	var req PiRequest
	if !bind(c, &req) {
		return
	}
	if err := h.limits.CheckEstimatePi(req.Samples); err != nil {
		h.rejected(c, err)
		return
	}

	ctx, cancel := callContext(c, piTimeout)
	defer cancel()

	resp, err := h.backend.EstimatePi(ctx, req.Samples)
	if err != nil {
		h.backendError(c, engine.OpEstimatePi, err)
		return
	}
	render(c, http.StatusOK, PiResponse{
		Pi:     resp.GetPiEstimate(),
		Inside: resp.GetInside(),
		Total:  resp.GetTotal(),
		Seed:   resp.GetSeed(),
	})
}

// MatMul handles POST /engine/matmul.
func (h *Handlers) MatMul(c *gin.Context) {
	var req MatMulRequest
	if !bind(c, &req) {
		return
	}
	a := matrix.Matrix{Rows: int(req.A.Rows), Cols: int(req.A.Cols), Data: req.A.Data}
	b := matrix.Matrix{Rows: int(req.B.Rows), Cols: int(req.B.Cols), Data: req.B.Data}
	if err := h.limits.CheckMatMul(a, b); err != nil {
		h.rejected(c, err)
		return
	}

	ctx, cancel := callContext(c, matmulTimeout)
	defer cancel()

	product, err := h.backend.MatMul(ctx, req.A.proto(), req.B.proto())
	if err != nil {
		h.backendError(c, engine.OpMatMul, err)
		return
	}
	render(c, http.StatusOK, MatMulResponse{C: matrixDTO(product)})
}

// Stats handles POST /engine/stats.
func (h *Handlers) Stats(c *gin.Context) {
	var req StatsRequest
	if !bind(c, &req) {
		return
	}
	sample := true
	if req.Sample != nil {
		sample = *req.Sample
	}

	ctx, cancel := callContext(c, statsTimeout)
	defer cancel()

	resp, err := h.backend.ComputeStats(ctx, req.Data, sample)
	if err != nil {
		h.backendError(c, engine.OpComputeStats, err)
		return
	}
	render(c, http.StatusOK, statsResponse(resp))
}

// Health handles GET /health. It reports the backend as well as the gateway.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := callContext(c, healthTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		render(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "engine": err.Error()})
		return
	}
	render(c, http.StatusOK, gin.H{"status": "healthy", "engine": "serving"})
}

// MetricsJSON handles GET /metrics/json.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		render(c, http.StatusNotFound, ErrorResponse{Error: "metrics disabled"})
		return
	}
	render(c, http.StatusOK, h.metrics.Snapshot())
}

func (h *Handlers) rejected(c *gin.Context, err error) {
	ve, ok := engine.AsValidation(err)
	if !ok {
		render(c, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.RecordValidationFailure(ve.Op, ve.Reason)
	}
	h.logger.Warn("request rejected", append(requestFields(c),
		zap.String("method", ve.Op),
		zap.String("field", ve.Field),
		zap.String("reason", ve.Reason),
	)...)
	render(c, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field, Reason: ve.Reason})
}

func (h *Handlers) backendError(c *gin.Context, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("engine call failed", append(requestFields(c),
			zap.String("method", op),
			zap.Error(err),
		)...)
	}
	_ = c.Error(err)
	render(c, code, ErrorResponse{Error: "RPC failed: " + err.Error()})
}

// callContext bounds a backend call and forwards the request id as gRPC
// metadata.
func callContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if rid := middleware.RequestIDFrom(c); rid != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, enginegrpc.MetadataRequestID, rid)
	}
	return context.WithTimeout(ctx, timeout)
}

func requestFields(c *gin.Context) []zap.Field {
	fields := tracing.Fields(c.Request.Context())
	if rid := middleware.RequestIDFrom(c); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	return fields
}

// statusFor maps a backend error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return http.StatusServiceUnavailable
	}
	switch status.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Unknown:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// bind decodes the JSON body into v with sonic. It writes a 400 and returns
// false on failure.
func bind(c *gin.Context, v interface{}) bool {
	body, err := c.GetRawData()
	if err == nil {
		err = sonic.Unmarshal(body, v)
	}
	if err != nil {
		render(c, http.StatusBadRequest, ErrorResponse{Error: "invalid payload"})
		return false
	}
	return true
}

// render encodes v with sonic.
func render(c *gin.Context, code int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "encode response: " + err.Error()})
		return
	}
	c.Data(code, "application/json; charset=utf-8", body)
}
