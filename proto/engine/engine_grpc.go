package engine

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified service name, also used for health
// checks.
const ServiceName = "engine.EngineService"

const (
	EngineService_Greet_FullMethodName        = "/engine.EngineService/Greet"
	EngineService_EstimatePi_FullMethodName   = "/engine.EngineService/EstimatePi"
	EngineService_MatMul_FullMethodName       = "/engine.EngineService/MatMul"
	EngineService_ComputeStats_FullMethodName = "/engine.EngineService/ComputeStats"
)

// EngineServiceClient is the client API for EngineService.
type EngineServiceClient interface {
	Greet(ctx context.Context, in *GreetRequest, opts ...grpc.CallOption) (*GreetReply, error)
	EstimatePi(ctx context.Context, in *PiRequest, opts ...grpc.CallOption) (*PiReply, error)
	MatMul(ctx context.Context, in *MatMulRequest, opts ...grpc.CallOption) (*MatReply, error)
	ComputeStats(ctx context.Context, in *VectorStatsRequest, opts ...grpc.CallOption) (*VectorStatsReply, error)
}

type engineServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineServiceClient(cc grpc.ClientConnInterface) EngineServiceClient {
	return &engineServiceClient{cc}
}

func (c *engineServiceClient) Greet(ctx context.Context, in *GreetRequest, opts ...grpc.CallOption) (*GreetReply, error) {
	out := new(GreetReply)
	if err := c.cc.Invoke(ctx, EngineService_Greet_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineServiceClient) EstimatePi(ctx context.Context, in *PiRequest, opts ...grpc.CallOption) (*PiReply, error) {
	out := new(PiReply)
	if err := c.cc.Invoke(ctx, EngineService_EstimatePi_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineServiceClient) MatMul(ctx context.Context, in *MatMulRequest, opts ...grpc.CallOption) (*MatReply, error) {
	out := new(MatReply)
	if err := c.cc.Invoke(ctx, EngineService_MatMul_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineServiceClient) ComputeStats(ctx context.Context, in *VectorStatsRequest, opts ...grpc.CallOption) (*VectorStatsReply, error) {
	out := new(VectorStatsReply)
	if err := c.cc.Invoke(ctx, EngineService_ComputeStats_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EngineServiceServer is the server API for EngineService. Implementations
// must embed UnimplementedEngineServiceServer.
type EngineServiceServer interface {
	Greet(context.Context, *GreetRequest) (*GreetReply, error)
	EstimatePi(context.Context, *PiRequest) (*PiReply, error)
	MatMul(context.Context, *MatMulRequest) (*MatReply, error)
	ComputeStats(context.Context, *VectorStatsRequest) (*VectorStatsReply, error)
	mustEmbedUnimplementedEngineServiceServer()
}

// UnimplementedEngineServiceServer answers every method with codes.Unimplemented.
type UnimplementedEngineServiceServer struct{}

func (UnimplementedEngineServiceServer) Greet(context.Context, *GreetRequest) (*GreetReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Greet not implemented")
}

func (UnimplementedEngineServiceServer) EstimatePi(context.Context, *PiRequest) (*PiReply, error) {
	return nil, status.Error(codes.Unimplemented, "method EstimatePi not implemented")
}

func (UnimplementedEngineServiceServer) MatMul(context.Context, *MatMulRequest) (*MatReply, error) {
	return nil, status.Error(codes.Unimplemented, "method MatMul not implemented")
}

func (UnimplementedEngineServiceServer) ComputeStats(context.Context, *VectorStatsRequest) (*VectorStatsReply, error) {
	return nil, status.Error(codes.Unimplemented, "method ComputeStats not implemented")
}

func (UnimplementedEngineServiceServer) mustEmbedUnimplementedEngineServiceServer() {}

func RegisterEngineServiceServer(s grpc.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&EngineService_ServiceDesc, srv)
}

func _EngineService_Greet_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GreetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServiceServer).Greet(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EngineService_Greet_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServiceServer).Greet(ctx, req.(*GreetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _EngineService_EstimatePi_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PiRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServiceServer).EstimatePi(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EngineService_EstimatePi_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServiceServer).EstimatePi(ctx, req.(*PiRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _EngineService_MatMul_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MatMulRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServiceServer).MatMul(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EngineService_MatMul_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServiceServer).MatMul(ctx, req.(*MatMulRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _EngineService_ComputeStats_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(VectorStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServiceServer).ComputeStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EngineService_ComputeStats_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServiceServer).ComputeStats(ctx, req.(*VectorStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// EngineService_ServiceDesc is the grpc.ServiceDesc for EngineService.
var EngineService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Greet", Handler: _EngineService_Greet_Handler},
		{MethodName: "EstimatePi", Handler: _EngineService_EstimatePi_Handler},
		{MethodName: "MatMul", Handler: _EngineService_MatMul_Handler},
		{MethodName: "ComputeStats", Handler: _EngineService_ComputeStats_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "engine/engine.proto",
}
