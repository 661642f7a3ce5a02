package engine

// GreetRequest carries the name to greet.
type GreetRequest struct {
	Name string
}

func (x *GreetRequest) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

// GreetReply carries the formatted greeting.
type GreetReply struct {
	Message string
}

func (x *GreetReply) GetMessage() string {
	if x != nil {
		return x.Message
	}
	return ""
}

// PiRequest asks for a Monte Carlo estimate of π.
type PiRequest struct {
	Samples int64
}

func (x *PiRequest) GetSamples() int64 {
	if x != nil {
		return x.Samples
	}
	return 0
}

// PiReply is the estimate together with the counts and seed that produced it.
type PiReply struct {
	PiEstimate float64
	Inside     int64
	Total      int64
	Seed       int64
}

func (x *PiReply) GetPiEstimate() float64 {
	if x != nil {
		return x.PiEstimate
	}
	return 0
}

func (x *PiReply) GetInside() int64 {
	if x != nil {
		return x.Inside
	}
	return 0
}

func (x *PiReply) GetTotal() int64 {
	if x != nil {
		return x.Total
	}
	return 0
}

func (x *PiReply) GetSeed() int64 {
	if x != nil {
		return x.Seed
	}
	return 0
}

// Matrix is a dense row-major matrix.
type Matrix struct {
	Rows int32
	Cols int32
	Data []float64
}

func (x *Matrix) GetRows() int32 {
	if x != nil {
		return x.Rows
	}
	return 0
}

func (x *Matrix) GetCols() int32 {
	if x != nil {
		return x.Cols
	}
	return 0
}

func (x *Matrix) GetData() []float64 {
	if x != nil {
		return x.Data
	}
	return nil
}

// MatMulRequest asks for the product A x B.
type MatMulRequest struct {
	A *Matrix
	B *Matrix
}

func (x *MatMulRequest) GetA() *Matrix {
	if x != nil {
		return x.A
	}
	return nil
}

func (x *MatMulRequest) GetB() *Matrix {
	if x != nil {
		return x.B
	}
	return nil
}

// MatReply carries the product matrix.
type MatReply struct {
	C *Matrix
}

func (x *MatReply) GetC() *Matrix {
	if x != nil {
		return x.C
	}
	return nil
}

// VectorStatsRequest asks for descriptive statistics of Data. Sample selects
// the Bessel-corrected variance.
type VectorStatsRequest struct {
	Data   []float64
	Sample bool
}

func (x *VectorStatsRequest) GetData() []float64 {
	if x != nil {
		return x.Data
	}
	return nil
}

func (x *VectorStatsRequest) GetSample() bool {
	if x != nil {
		return x.Sample
	}
	return false
}

// VectorStatsReply carries the summary. Min and Max are NaN when Count is 0.
type VectorStatsReply struct {
	Count    int64
	Sum      float64
	Mean     float64
	Variance float64
	Stddev   float64
	Min      float64
	Max      float64
}

func (x *VectorStatsReply) GetCount() int64 {
	if x != nil {
		return x.Count
	}
	return 0
}

func (x *VectorStatsReply) GetSum() float64 {
	if x != nil {
		return x.Sum
	}
	return 0
}

func (x *VectorStatsReply) GetMean() float64 {
	if x != nil {
		return x.Mean
	}
	return 0
}

func (x *VectorStatsReply) GetVariance() float64 {
	if x != nil {
		return x.Variance
	}
	return 0
}

func (x *VectorStatsReply) GetStddev() float64 {
	if x != nil {
		return x.Stddev
	}
	return 0
}

func (x *VectorStatsReply) GetMin() float64 {
	if x != nil {
		return x.Min
	}
	return 0
}

func (x *VectorStatsReply) GetMax() float64 {
	if x != nil {
		return x.Max
	}
	return 0
}
