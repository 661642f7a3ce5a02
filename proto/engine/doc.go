// Package engine holds the wire types and gRPC bindings for EngineService.
//
// Defined by: proto/engine/engine.proto
//
// This package contains:
//   - Request/reply messages for Greet, EstimatePi, MatMul and ComputeStats
//   - Proto3 wire encoding for those messages (protowire)
//   - A gRPC codec registered as "proto" that encodes engine messages and
//     falls back to google.golang.org/protobuf for any other proto.Message
//   - EngineServiceClient / EngineServiceServer and the service descriptor
//
// The messages are plain Go structs so they can be built and compared
// without reflection. The bytes on the wire are ordinary proto3, so clients
// generated from engine.proto by protoc interoperate with this server.
//
// Usage:
//
//	This package is typically wrapped by internal/grpc/engine for clients
//	and implemented by internal/grpc.EngineService on the server, which
//	delegates to internal/domain/engine.
package engine
