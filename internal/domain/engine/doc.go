// Package engine dispatches compute requests to the numeric kernels.
//
// The Engine validates each request, draws seeds for Monte Carlo runs and
// returns either a result or a *ValidationError. It knows nothing about the
// wire: the gRPC service and the HTTP gateway decide how a validation error
// reaches the caller.
//
// Operations:
//   - Greet: formats a greeting, never fails
//   - EstimatePi: samples > 0 (and within MaxSamples, if set)
//   - MatMul: both operands well-shaped and a.Cols == b.Rows
//   - ComputeStats: never fails; empty input yields Count 0 and NaN Min/Max
package engine
