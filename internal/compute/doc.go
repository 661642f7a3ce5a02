// Package compute groups the numeric kernels served by the engine.
//
// Kernels are pure functions of their inputs (plus an explicit seed for the
// Monte Carlo estimator). They hold no state across calls, never block and
// never log; request validation and reply shaping belong to the dispatcher
// in internal/domain/engine.
//
// Kernels:
//   - matrix: shape validation and dense row-major multiplication
//   - statistics: single-pass count/sum/mean/variance/min/max
//   - montecarlo: seeded rejection-sampling estimate of π
package compute
