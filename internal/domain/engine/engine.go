package engine

import (
	"fmt"

	"github.com/GriffinCanCode/ComputeEngine/internal/compute/matrix"
	"github.com/GriffinCanCode/ComputeEngine/internal/compute/montecarlo"
	"github.com/GriffinCanCode/ComputeEngine/internal/compute/statistics"
)

// Operation names, shared with the wire layer for logs and metric labels.
const (
	OpGreet        = "Greet"
	OpEstimatePi   = "EstimatePi"
	OpMatMul       = "MatMul"
	OpComputeStats = "ComputeStats"
)

// Limits bounds request sizes. Zero means unbounded.
type Limits struct {
	MaxSamples        int64
	MaxMatrixElements int64
}

// Engine validates requests and runs the kernels. It is safe for concurrent
// use; the seed source is its only shared state.
type Engine struct {
	seeds  SeedSource
	limits Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeedSource replaces the monotonic clock seeds.
func WithSeedSource(s SeedSource) Option {
	return func(e *Engine) { e.seeds = s }
}

// WithLimits sets request bounds.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.seeds == nil {
		e.seeds = NewMonotonicSeeds()
	}
	return e
}

// Limits returns the configured bounds.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Greet returns "Hello <name> from Go Engine!". Any name is accepted.
func (e *Engine) Greet(name string) string {
	return "Hello " + name + " from Go Engine!"
}

// EstimatePi draws a fresh seed and runs the Monte Carlo kernel.
func (e *Engine) EstimatePi(samples int64) (montecarlo.Result, error) {
	if err := e.limits.CheckEstimatePi(samples); err != nil {
		return montecarlo.Result{}, err
	}
	return montecarlo.EstimatePi(samples, e.seeds.NextSeed()), nil
}

// MatMul multiplies a by b into a freshly allocated a.Rows x b.Cols matrix.
func (e *Engine) MatMul(a, b matrix.Matrix) (matrix.Matrix, error) {
	if err := e.limits.CheckMatMul(a, b); err != nil {
		return matrix.Matrix{}, err
	}

	c, err := matrix.New(a.Rows, b.Cols)
	if err != nil {
		return matrix.Matrix{}, &ValidationError{
			Op: OpMatMul, Field: "c", Reason: ReasonTooLarge,
			Detail: err.Error(), err: ErrInputTooLarge, cause: err,
		}
	}
	matrix.Multiply(a, b, c)
	return c, nil
}

// ComputeStats summarizes data. It never fails.
func (e *Engine) ComputeStats(data []float64, sample bool) statistics.Summary {
	return statistics.Summarize(data, sample)
}

// CheckEstimatePi validates an EstimatePi request.
func (l Limits) CheckEstimatePi(samples int64) error {
	if samples <= 0 {
		return &ValidationError{
			Op: OpEstimatePi, Field: "samples", Reason: ReasonNonPositive,
			Detail: fmt.Sprintf("got %d", samples),
			err:    ErrInvalidSamples,
		}
	}
	if l.MaxSamples > 0 && samples > l.MaxSamples {
		return &ValidationError{
			Op: OpEstimatePi, Field: "samples", Reason: ReasonTooLarge,
			Detail: fmt.Sprintf("%d exceeds limit %d", samples, l.MaxSamples),
			err:    ErrInputTooLarge,
		}
	}
	return nil
}

// CheckMatMul validates a MatMul request: both operands well-shaped,
// a.Cols == b.Rows, and every matrix involved within MaxMatrixElements.
// The product is always held to matrix.MaxElements, even when unbounded.
func (l Limits) CheckMatMul(a, b matrix.Matrix) error {
	if err := matrix.Compatible(a, b); err != nil {
		ve := &ValidationError{Op: OpMatMul, err: ErrInvalidShape, cause: err, Detail: err.Error()}
		switch {
		case !matrix.ValidShape(a):
			ve.Field, ve.Reason = "a", ReasonBadShape
		case !matrix.ValidShape(b):
			ve.Field, ve.Reason = "b", ReasonBadShape
		default:
			ve.Field, ve.Reason = "a.cols", ReasonShapeMismatch
		}
		return ve
	}

	limit := l.MaxMatrixElements
	if limit <= 0 || limit > int64(matrix.MaxElements) {
		limit = int64(matrix.MaxElements)
	}
	for _, m := range []struct {
		field string
		rows  int
		cols  int
	}{
		{"a", a.Rows, a.Cols},
		{"b", b.Rows, b.Cols},
		{"c", a.Rows, b.Cols},
	} {
		// rows*cols > max, without the multiplication.
		if m.rows > 0 && int64(m.cols) > limit/int64(m.rows) {
			return &ValidationError{
				Op: OpMatMul, Field: m.field, Reason: ReasonTooLarge,
				Detail: fmt.Sprintf("%dx%d exceeds limit of %d elements", m.rows, m.cols, limit),
				err:    ErrInputTooLarge,
			}
		}
	}
	return nil
}
