// Package matrix implements the dense row-major matrix kernel.
package matrix

import (
	"fmt"
	"math/bits"
)

// Matrix is a dense matrix stored row-major: element (i, j) lives at
// Data[i*Cols+j]. A matrix with Rows == 0 or Cols == 0 is empty.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// Empty returns the canonical empty matrix {0, 0, []}.
func Empty() Matrix {
	return Matrix{Rows: 0, Cols: 0, Data: []float64{}}
}

// MaxElements is the largest element count whose []float64 backing array
// has a byte size representable as an int.
const MaxElements = maxInt / 8

// New allocates a zero-filled rows x cols matrix.
func New(rows, cols int) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return Matrix{}, fmt.Errorf("new %dx%d: %w", rows, cols, ErrBadShape)
	}
	n, ok := elements(rows, cols)
	if !ok {
		return Matrix{}, fmt.Errorf("new %dx%d: %w", rows, cols, ErrTooLarge)
	}
	return Matrix{Rows: rows, Cols: cols, Data: make([]float64, n)}, nil
}

// IsEmpty reports whether m has no rows or no columns.
func (m Matrix) IsEmpty() bool {
	return m.Rows == 0 || m.Cols == 0
}

// At returns element (i, j). It panics on out-of-range indices like a slice.
func (m Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// String renders the shape, e.g. "2x3".
func (m Matrix) String() string {
	return fmt.Sprintf("%dx%d", m.Rows, m.Cols)
}

// ValidShape reports whether rows and cols are non-negative and
// len(Data) == Rows*Cols. The product is computed without overflow.
func ValidShape(m Matrix) bool {
	n, ok := elements(m.Rows, m.Cols)
	return ok && n == len(m.Data)
}

// Compatible checks that a and b are well-shaped and that a.Cols == b.Rows.
func Compatible(a, b Matrix) error {
	if !ValidShape(a) {
		return fmt.Errorf("operand a (%s, %d values): %w", a, len(a.Data), ErrBadShape)
	}
	if !ValidShape(b) {
		return fmt.Errorf("operand b (%s, %d values): %w", b, len(b.Data), ErrBadShape)
	}
	if a.Cols != b.Rows {
		return fmt.Errorf("(%s) * (%s): %w", a, b, ErrDimensionMismatch)
	}
	return nil
}

// Multiply accumulates a*b into c, which must be a zero-filled
// a.Rows x b.Cols matrix. Shapes are assumed to have been checked with
// Compatible.
//
// The loops run i (rows of a), p (inner dimension), j (columns of b) so that
// one row of b and one row of c are walked sequentially. When a[i][p] is
// exactly 0.0 the whole j loop for that p is skipped.
func Multiply(a, b, c Matrix) {
	m, k, n := a.Rows, a.Cols, b.Cols

	for i := 0; i < m; i++ {
		cRow := c.Data[i*n : (i+1)*n]
		aRow := a.Data[i*k : (i+1)*k]
		for p := 0; p < k; p++ {
			aip := aRow[p]
			if aip == 0.0 {
				continue
			}
			bRow := b.Data[p*n : (p+1)*n]
			for j := range cRow {
				cRow[j] += aip * bRow[j]
			}
		}
	}
}

// Product validates a and b, allocates the result and multiplies.
func Product(a, b Matrix) (Matrix, error) {
	if err := Compatible(a, b); err != nil {
		return Matrix{}, err
	}
	c, err := New(a.Rows, b.Cols)
	if err != nil {
		return Matrix{}, err
	}
	Multiply(a, b, c)
	return c, nil
}

// MultiplyAdds returns the number of multiply-add steps a dense product of
// a and b performs before zero skipping.
func MultiplyAdds(a, b Matrix) int64 {
	return int64(a.Rows) * int64(a.Cols) * int64(b.Cols)
}

// Elements returns rows*cols and whether it is a non-negative count no
// larger than MaxElements. The product is computed without overflow.
func Elements(rows, cols int) (int, bool) {
	return elements(rows, cols)
}

func elements(rows, cols int) (int, bool) {
	if rows < 0 || cols < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(rows), uint64(cols))
	if hi != 0 || lo > uint64(MaxElements) {
		return 0, false
	}
	return int(lo), true
}

const maxInt = int(^uint(0) >> 1)
