package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

var errMatrixSpec = errors.New("matrix must look like RxC:v,v,...")

// parseMatrix reads "2x3:1,2,3,4,5,6". The value count is not checked
// against the shape; the server decides what a malformed matrix means.
func parseMatrix(spec string) (*pb.Matrix, error) {
	shape, values, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok {
		return nil, errMatrixSpec
	}
	rs, cs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(shape)), "x")
	if !ok {
		return nil, errMatrixSpec
	}
	rows, err := parseDim(rs)
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	cols, err := parseDim(cs)
	if err != nil {
		return nil, fmt.Errorf("cols: %w", err)
	}

	data := []float64{}
	if values = strings.TrimSpace(values); values != "" {
		data, err = parseValues(strings.Split(values, ","))
		if err != nil {
			return nil, err
		}
	}
	return &pb.Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

func parseDim(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative dimension %d", n)
	}
	return int32(n), nil
}

// parseValues parses decimal numbers. NaN and infinities are rejected.
func parseValues(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
