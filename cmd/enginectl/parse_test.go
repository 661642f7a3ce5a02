package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

func TestParseMatrix(t *testing.T) {
	tests := []struct {
		spec    string
		want    *pb.Matrix
		wantErr bool
	}{
		{"2x3:1,2,3,4,5,6", &pb.Matrix{Rows: 2, Cols: 3, Data: []float64{1, 2, 3, 4, 5, 6}}, false},
		{" 1X2 : 0.5, -1e3 ", &pb.Matrix{Rows: 1, Cols: 2, Data: []float64{0.5, -1000}}, false},
		{"0x0:", &pb.Matrix{Rows: 0, Cols: 0, Data: []float64{}}, false},
		{"2x2:1,2,3", &pb.Matrix{Rows: 2, Cols: 2, Data: []float64{1, 2, 3}}, false},
		{"2x3", nil, true},
		{"2by3:1", nil, true},
		{"-1x2:1,2", nil, true},
		{"99999999999x1:1", nil, true},
		{"1x1:abc", nil, true},
		{"1x1:NaN", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseMatrix(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValues(t *testing.T) {
	got, err := parseValues([]string{"1", " 2.5", "-3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, got)

	got, err = parseValues(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseValues([]string{"+Inf"})
	assert.Error(t, err)
}

func TestFormatMatrix(t *testing.T) {
	m := &pb.Matrix{Rows: 2, Cols: 2, Data: []float64{58, 64, 139, 154}}
	assert.Equal(t, "2x2:\n58 64\n139 154\n", formatMatrix(m))
	assert.Equal(t, "0x0:\n", formatMatrix(&pb.Matrix{}))
}
