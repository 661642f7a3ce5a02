package matrix

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// naive is the textbook i-j-p triple loop used as a reference.
func naive(a, b Matrix) Matrix {
	c := Matrix{Rows: a.Rows, Cols: b.Cols, Data: make([]float64, a.Rows*b.Cols)}
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < b.Cols; j++ {
			var sum float64
			for p := 0; p < a.Cols; p++ {
				sum += a.At(i, p) * b.At(p, j)
			}
			c.Data[i*c.Cols+j] = sum
		}
	}
	return c
}

func random(r *rand.Rand, rows, cols int, zeroFraction float64) Matrix {
	m := Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
	for i := range m.Data {
		if r.Float64() < zeroFraction {
			continue
		}
		m.Data[i] = r.Float64()*20 - 10
	}
	return m
}

func TestProductScenario(t *testing.T) {
	a := Matrix{Rows: 2, Cols: 3, Data: []float64{1, 2, 3, 4, 5, 6}}
	b := Matrix{Rows: 3, Cols: 2, Data: []float64{7, 8, 9, 10, 11, 12}}

	c, err := Product(a, b)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Rows)
	assert.Equal(t, 2, c.Cols)
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Data)
}

func TestProductMatchesReference(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	shapes := []struct{ m, k, n int }{
		{1, 1, 1},
		{1, 5, 1},
		{5, 1, 5},
		{3, 4, 2},
		{8, 8, 8},
		{17, 3, 9},
		{2, 31, 4},
	}

	for _, zeros := range []float64{0, 0.3, 0.9} {
		for _, s := range shapes {
			a := random(r, s.m, s.k, zeros)
			b := random(r, s.k, s.n, zeros)

			got, err := Product(a, b)
			require.NoError(t, err)
			require.Equal(t, s.m, got.Rows)
			require.Equal(t, s.n, got.Cols)

			want := naive(a, b)
			for i := range want.Data {
				assert.InDelta(t, want.Data[i], got.Data[i], 1e-9, "shape %dx%dx%d index %d", s.m, s.k, s.n, i)
			}

			var oracle mat.Dense
			oracle.Mul(mat.NewDense(a.Rows, a.Cols, a.Data), mat.NewDense(b.Rows, b.Cols, b.Data))
			assert.True(t, mat.EqualApprox(&oracle, mat.NewDense(got.Rows, got.Cols, got.Data), 1e-9))
		}
	}
}

func TestMultiplySkipsZeroRows(t *testing.T) {
	// A zero in a skips the whole row of b, so a NaN there never reaches c.
	a := Matrix{Rows: 1, Cols: 2, Data: []float64{0, 2}}
	b := Matrix{Rows: 2, Cols: 2, Data: []float64{math.NaN(), math.Inf(1), 3, 4}}

	c, err := Product(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 8}, c.Data)
}

func TestMultiplyNegativeZeroIsSkipped(t *testing.T) {
	a := Matrix{Rows: 1, Cols: 1, Data: []float64{math.Copysign(0, -1)}}
	b := Matrix{Rows: 1, Cols: 1, Data: []float64{math.Inf(1)}}

	c, err := Product(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Data[0])
}

func TestProductDegenerateShapes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Matrix
		wantRows int
		wantCols int
	}{
		{
			name:     "empty inner dimension",
			a:        Matrix{Rows: 2, Cols: 0, Data: []float64{}},
			b:        Matrix{Rows: 0, Cols: 3, Data: nil},
			wantRows: 2,
			wantCols: 3,
		},
		{
			name:     "no rows",
			a:        Matrix{Rows: 0, Cols: 2, Data: nil},
			b:        Matrix{Rows: 2, Cols: 2, Data: []float64{1, 2, 3, 4}},
			wantRows: 0,
			wantCols: 2,
		},
		{
			name:     "both empty",
			a:        Empty(),
			b:        Empty(),
			wantRows: 0,
			wantCols: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Product(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, c.Rows)
			assert.Equal(t, tt.wantCols, c.Cols)
			assert.Len(t, c.Data, tt.wantRows*tt.wantCols)
			for _, v := range c.Data {
				assert.Zero(t, v)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	ok := Matrix{Rows: 2, Cols: 2, Data: []float64{1, 2, 3, 4}}

	tests := []struct {
		name    string
		a, b    Matrix
		wantErr error
	}{
		{"compatible", ok, ok, nil},
		{"inner mismatch", ok, Matrix{Rows: 3, Cols: 1, Data: []float64{1, 2, 3}}, ErrDimensionMismatch},
		{"short data in a", Matrix{Rows: 2, Cols: 2, Data: []float64{1}}, ok, ErrBadShape},
		{"long data in b", ok, Matrix{Rows: 2, Cols: 1, Data: []float64{1, 2, 3}}, ErrBadShape},
		{"negative rows", Matrix{Rows: -1, Cols: 2, Data: nil}, ok, ErrBadShape},
		{"negative cols", ok, Matrix{Rows: 2, Cols: -2, Data: nil}, ErrBadShape},
		{"negative times negative", Matrix{Rows: -2, Cols: -2, Data: []float64{1, 2, 3, 4}}, ok, ErrBadShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compatible(tt.a, tt.b)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = Product(tt.a, tt.b)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidShapeOverflow(t *testing.T) {
	huge := Matrix{Rows: maxInt, Cols: 2, Data: []float64{1, 2}}
	assert.False(t, ValidShape(huge))

	_, err := New(maxInt, 3)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = New(-1, 3)
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestNewRejectsUnallocatableShapes(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"int32 square", math.MaxInt32, math.MaxInt32},
		{"overflows int", 1 << 40, 1 << 40},
		{"one past the cap", MaxElements + 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Elements(tt.rows, tt.cols)
			assert.False(t, ok)

			_, err := New(tt.rows, tt.cols)
			assert.ErrorIs(t, err, ErrTooLarge)
		})
	}

	n, ok := Elements(MaxElements, 1)
	assert.True(t, ok)
	assert.Equal(t, MaxElements, n)
}

func TestEmpty(t *testing.T) {
	e := Empty()
	assert.True(t, e.IsEmpty())
	assert.NotNil(t, e.Data)
	assert.Len(t, e.Data, 0)
	assert.True(t, ValidShape(e))
	assert.Equal(t, "0x0", e.String())
}

func TestMultiplyAdds(t *testing.T) {
	a := Matrix{Rows: 2, Cols: 3}
	b := Matrix{Rows: 3, Cols: 4}
	assert.Equal(t, int64(24), MultiplyAdds(a, b))
}

func BenchmarkMultiply(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	x := random(r, 128, 128, 0)
	y := random(r, 128, 128, 0)
	c, _ := New(128, 128)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clear(c.Data)
		Multiply(x, y, c)
	}
}
