package matrix

import "errors"

var (
	// ErrBadShape is returned when rows or cols are negative or
	// len(data) != rows*cols.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrDimensionMismatch is returned when a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrTooLarge is returned when rows*cols exceeds MaxElements.
	ErrTooLarge = errors.New("matrix: too many elements")
)
