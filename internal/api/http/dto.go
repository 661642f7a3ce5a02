package http

import (
	"math"

	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// PiRequest is the body of POST /engine/pi.
type PiRequest struct {
	Samples int64 `json:"samples"`
}

// PiResponse is the reply of POST /engine/pi.
type PiResponse struct {
	Pi     float64 `json:"pi"`
	Inside int64   `json:"inside"`
	Total  int64   `json:"total"`
	Seed   int64   `json:"seed"`
}

// MatrixDTO is a row-major matrix.
type MatrixDTO struct {
	Rows int32     `json:"rows"`
	Cols int32     `json:"cols"`
	Data []float64 `json:"data"`
}

// MatMulRequest is the body of POST /engine/matmul.
type MatMulRequest struct {
	A MatrixDTO `json:"a"`
	B MatrixDTO `json:"b"`
}

// MatMulResponse is the reply of POST /engine/matmul.
type MatMulResponse struct {
	C MatrixDTO `json:"c"`
}

// StatsRequest is the body of POST /engine/stats. Sample defaults to true.
type StatsRequest struct {
	Data   []float64 `json:"data"`
	Sample *bool     `json:"sample,omitempty"`
}

// StatsResponse is the reply of POST /engine/stats. Values that are not
// finite, such as min and max of an empty vector, are null.
type StatsResponse struct {
	Count    int64    `json:"count"`
	Sum      *float64 `json:"sum"`
	Mean     *float64 `json:"mean"`
	Variance *float64 `json:"variance"`
	Stddev   *float64 `json:"stddev"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (m MatrixDTO) proto() *pb.Matrix {
	return &pb.Matrix{Rows: m.Rows, Cols: m.Cols, Data: m.Data}
}

func matrixDTO(m *pb.Matrix) MatrixDTO {
	data := m.GetData()
	if data == nil {
		data = []float64{}
	}
	return MatrixDTO{Rows: m.GetRows(), Cols: m.GetCols(), Data: data}
}

func statsResponse(r *pb.VectorStatsReply) StatsResponse {
	return StatsResponse{
		Count:    r.GetCount(),
		Sum:      finite(r.GetSum()),
		Mean:     finite(r.GetMean()),
		Variance: finite(r.GetVariance()),
		Stddev:   finite(r.GetStddev()),
		Min:      finite(r.GetMin()),
		Max:      finite(r.GetMax()),
	}
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
