package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSamples is wrapped when EstimatePi gets samples <= 0.
	ErrInvalidSamples = errors.New("samples must be positive")

	// ErrInvalidShape is wrapped when MatMul operands are malformed or
	// cannot be multiplied.
	ErrInvalidShape = errors.New("invalid matrix shape")

	// ErrInputTooLarge is wrapped when a request exceeds a configured bound.
	ErrInputTooLarge = errors.New("input too large")
)

// Reasons are stable, snake_case and safe to use as metric labels.
const (
	ReasonNonPositive   = "non_positive"
	ReasonBadShape      = "bad_shape"
	ReasonShapeMismatch = "shape_mismatch"
	ReasonTooLarge      = "too_large"
)

// ValidationError describes a rejected request.
type ValidationError struct {
	Op     string // operation name, e.g. "MatMul"
	Field  string // offending request field, e.g. "a.cols"
	Reason string // one of the Reason constants
	Detail string // human-readable specifics

	err   error // sentinel
	cause error // kernel error, if any
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.err)
	}
	return fmt.Sprintf("%s: %s: %v: %s", e.Op, e.Field, e.err, e.Detail)
}

// Unwrap exposes both the sentinel and the underlying kernel error.
func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

// AsValidation extracts a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
