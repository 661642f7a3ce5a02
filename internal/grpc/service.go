package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GriffinCanCode/ComputeEngine/internal/compute/matrix"
	"github.com/GriffinCanCode/ComputeEngine/internal/domain/engine"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ComputeEngine/internal/infrastructure/tracing"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// EngineService implements pb.EngineServiceServer on top of engine.Engine.
type EngineService struct {
	pb.UnimplementedEngineServiceServer

	engine  *engine.Engine
	policy  ReplyPolicy
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewEngineService creates the service. A nil logger discards output and nil
// metrics register on a private registry.
func NewEngineService(e *engine.Engine, policy ReplyPolicy, logger *logging.Logger, metrics *monitoring.Metrics) *EngineService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics(nil)
	}
	return &EngineService{
		engine:  e,
		policy:  policy,
		logger:  logger.Named("engine"),
		metrics: metrics,
	}
}

// Policy returns the configured reply policy.
func (s *EngineService) Policy() ReplyPolicy {
	return s.policy
}

// Greet echoes the name back in a greeting.
func (s *EngineService) Greet(ctx context.Context, req *pb.GreetRequest) (*pb.GreetReply, error) {
	return &pb.GreetReply{Message: s.engine.Greet(req.GetName())}, nil
}

// EstimatePi runs a Monte Carlo estimate with a fresh seed.
func (s *EngineService) EstimatePi(ctx context.Context, req *pb.PiRequest) (*pb.PiReply, error) {
	res, err := s.engine.EstimatePi(req.GetSamples())
	if err != nil {
		if rerr := s.reject(ctx, err); rerr != nil {
			return nil, rerr
		}
		return &pb.PiReply{}, nil
	}

	s.metrics.AddPiSamples(res.Total)
	s.logger.Debug("pi estimated", append(tracing.Fields(ctx),
		zap.Int64("samples", res.Total),
		zap.Int64("inside", res.Inside),
		zap.Int64("seed", res.Seed),
		zap.Float64("estimate", res.PiEstimate),
	)...)

	return &pb.PiReply{
		PiEstimate: res.PiEstimate,
		Inside:     res.Inside,
		Total:      res.Total,
		Seed:       res.Seed,
	}, nil
}

// MatMul multiplies A by B.
func (s *EngineService) MatMul(ctx context.Context, req *pb.MatMulRequest) (*pb.MatReply, error) {
	a, b := fromProto(req.GetA()), fromProto(req.GetB())

	c, err := s.engine.MatMul(a, b)
	if err != nil {
		if rerr := s.reject(ctx, err); rerr != nil {
			return nil, rerr
		}
		return &pb.MatReply{C: &pb.Matrix{}}, nil
	}

	s.metrics.AddMatMulOps(matrix.MultiplyAdds(a, b))
	s.logger.Debug("matrices multiplied", append(tracing.Fields(ctx),
		zap.Stringer("a", a),
		zap.Stringer("b", b),
	)...)

	return &pb.MatReply{C: toProto(c)}, nil
}

// ComputeStats summarizes a vector. Empty input is not an error.
func (s *EngineService) ComputeStats(ctx context.Context, req *pb.VectorStatsRequest) (*pb.VectorStatsReply, error) {
	data := req.GetData()
	sum := s.engine.ComputeStats(data, req.GetSample())

	s.metrics.AddStatsValues(len(data))
	s.logger.Debug("stats computed", append(tracing.Fields(ctx),
		zap.Int64("count", sum.Count),
		zap.Bool("sample", req.GetSample()),
	)...)

	return &pb.VectorStatsReply{
		Count:    sum.Count,
		Sum:      sum.Sum,
		Mean:     sum.Mean,
		Variance: sum.Variance,
		Stddev:   sum.Stddev,
		Min:      sum.Min,
		Max:      sum.Max,
	}, nil
}

// reject records a failed request and returns the transport error the
// policy calls for. A nil result means the caller sends its zero reply.
func (s *EngineService) reject(ctx context.Context, err error) error {
	ve, ok := engine.AsValidation(err)
	if !ok {
		s.logger.Error("request failed", append(tracing.Fields(ctx), zap.Error(err))...)
		return status.Error(codes.Internal, err.Error())
	}

	s.metrics.RecordValidationFailure(ve.Op, ve.Reason)
	s.logger.Warn("request rejected", append(tracing.Fields(ctx),
		zap.String("method", ve.Op),
		zap.String("field", ve.Field),
		zap.String("reason", ve.Reason),
		zap.String("detail", ve.Detail),
		zap.Stringer("policy", s.policy),
	)...)

	if s.policy == ReplySentinel {
		return nil
	}
	return invalidArgument(ve)
}

func invalidArgument(ve *engine.ValidationError) error {
	st := status.New(codes.InvalidArgument, ve.Error())
	desc := ve.Reason
	if ve.Detail != "" {
		desc += ": " + ve.Detail
	}
	detailed, err := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: ve.Field, Description: desc},
		},
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func fromProto(m *pb.Matrix) matrix.Matrix {
	return matrix.Matrix{
		Rows: int(m.GetRows()),
		Cols: int(m.GetCols()),
		Data: m.GetData(),
	}
}

func toProto(m matrix.Matrix) *pb.Matrix {
	return &pb.Matrix{
		Rows: int32(m.Rows),
		Cols: int32(m.Cols),
		Data: m.Data,
	}
}
