package engine

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrWireType is returned when a known field arrives with the wrong wire type.
	ErrWireType = errors.New("engine: unexpected wire type")

	// ErrInvalidUTF8 is returned for string fields that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("engine: string field contains invalid UTF-8")
)

// Message is implemented by every engine wire message.
type Message interface {
	// AppendWire appends the proto3 encoding of the message to b.
	AppendWire(b []byte) []byte
	// UnmarshalWire resets the message and decodes b into it.
	UnmarshalWire(b []byte) error
}

var (
	_ Message = (*GreetRequest)(nil)
	_ Message = (*GreetReply)(nil)
	_ Message = (*PiRequest)(nil)
	_ Message = (*PiReply)(nil)
	_ Message = (*Matrix)(nil)
	_ Message = (*MatMulRequest)(nil)
	_ Message = (*MatReply)(nil)
	_ Message = (*VectorStatsRequest)(nil)
	_ Message = (*VectorStatsReply)(nil)
)

// ============================================================================
// Encoding
// ============================================================================

func (x *GreetRequest) AppendWire(b []byte) []byte {
	return appendString(b, 1, x.GetName())
}

func (x *GreetReply) AppendWire(b []byte) []byte {
	return appendString(b, 1, x.GetMessage())
}

func (x *PiRequest) AppendWire(b []byte) []byte {
	return appendInt64(b, 1, x.GetSamples())
}

func (x *PiReply) AppendWire(b []byte) []byte {
	b = appendDouble(b, 1, x.GetPiEstimate())
	b = appendInt64(b, 2, x.GetInside())
	b = appendInt64(b, 3, x.GetTotal())
	return appendInt64(b, 4, x.GetSeed())
}

func (x *Matrix) AppendWire(b []byte) []byte {
	b = appendInt64(b, 1, int64(x.GetRows()))
	b = appendInt64(b, 2, int64(x.GetCols()))
	return appendPackedDoubles(b, 3, x.GetData())
}

func (x *MatMulRequest) AppendWire(b []byte) []byte {
	b = appendMessage(b, 1, x.GetA())
	return appendMessage(b, 2, x.GetB())
}

func (x *MatReply) AppendWire(b []byte) []byte {
	return appendMessage(b, 1, x.GetC())
}

func (x *VectorStatsRequest) AppendWire(b []byte) []byte {
	b = appendPackedDoubles(b, 1, x.GetData())
	return appendBool(b, 2, x.GetSample())
}

func (x *VectorStatsReply) AppendWire(b []byte) []byte {
	b = appendInt64(b, 1, x.GetCount())
	b = appendDouble(b, 2, x.GetSum())
	b = appendDouble(b, 3, x.GetMean())
	b = appendDouble(b, 4, x.GetVariance())
	b = appendDouble(b, 5, x.GetStddev())
	b = appendDouble(b, 6, x.GetMin())
	return appendDouble(b, 7, x.GetMax())
}

// Proto3 scalar fields holding the zero value are omitted.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendInt64 also serves int32 fields: negative values are sign-extended
// to ten bytes exactly as protoc-generated code does.
func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// appendDouble omits only +0; -0 and NaN are written.
func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	bits := math.Float64bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, bits)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(vs)*8))
	for _, v := range vs {
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	return b
}

// appendMessage writes a length-delimited sub-message. A nil message is
// absent; a non-nil empty message is written with length zero.
func appendMessage(b []byte, num protowire.Number, m *Matrix) []byte {
	if m == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.AppendWire(nil))
}

// ============================================================================
// Decoding
// ============================================================================

func (x *GreetRequest) UnmarshalWire(b []byte) error {
	*x = GreetRequest{}
	return walk(b, func(f field) (err error) {
		if f.num == 1 {
			x.Name, err = f.asString()
		}
		return err
	})
}

func (x *GreetReply) UnmarshalWire(b []byte) error {
	*x = GreetReply{}
	return walk(b, func(f field) (err error) {
		if f.num == 1 {
			x.Message, err = f.asString()
		}
		return err
	})
}

func (x *PiRequest) UnmarshalWire(b []byte) error {
	*x = PiRequest{}
	return walk(b, func(f field) (err error) {
		if f.num == 1 {
			x.Samples, err = f.asInt64()
		}
		return err
	})
}

func (x *PiReply) UnmarshalWire(b []byte) error {
	*x = PiReply{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			x.PiEstimate, err = f.asDouble()
		case 2:
			x.Inside, err = f.asInt64()
		case 3:
			x.Total, err = f.asInt64()
		case 4:
			x.Seed, err = f.asInt64()
		}
		return err
	})
}

func (x *Matrix) UnmarshalWire(b []byte) error {
	*x = Matrix{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			x.Rows, err = f.asInt32()
		case 2:
			x.Cols, err = f.asInt32()
		case 3:
			x.Data, err = f.appendDoubles(x.Data)
		}
		return err
	})
}

func (x *MatMulRequest) UnmarshalWire(b []byte) error {
	*x = MatMulRequest{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			x.A, err = f.asMatrix(x.A)
		case 2:
			x.B, err = f.asMatrix(x.B)
		}
		return err
	})
}

func (x *MatReply) UnmarshalWire(b []byte) error {
	*x = MatReply{}
	return walk(b, func(f field) (err error) {
		if f.num == 1 {
			x.C, err = f.asMatrix(x.C)
		}
		return err
	})
}

func (x *VectorStatsRequest) UnmarshalWire(b []byte) error {
	*x = VectorStatsRequest{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			x.Data, err = f.appendDoubles(x.Data)
		case 2:
			x.Sample, err = f.asBool()
		}
		return err
	})
}

func (x *VectorStatsReply) UnmarshalWire(b []byte) error {
	*x = VectorStatsReply{}
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			x.Count, err = f.asInt64()
		case 2:
			x.Sum, err = f.asDouble()
		case 3:
			x.Mean, err = f.asDouble()
		case 4:
			x.Variance, err = f.asDouble()
		case 5:
			x.Stddev, err = f.asDouble()
		case 6:
			x.Min, err = f.asDouble()
		case 7:
			x.Max, err = f.asDouble()
		}
		return err
	})
}

// field is one decoded tag together with its raw value bytes.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

// walk visits every field in b in wire order. Unknown fields are skipped by
// the callbacks simply not matching them.
func walk(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(field{num: num, typ: typ, raw: b[:n]}); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: %w %d", f.num, ErrWireType, f.typ)
	}
	return nil
}

func (f field) varint() (uint64, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(f.raw)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return v, nil
}

func (f field) asInt64() (int64, error) {
	v, err := f.varint()
	return int64(v), err
}

func (f field) asInt32() (int32, error) {
	v, err := f.varint()
	return int32(v), err
}

func (f field) asBool() (bool, error) {
	v, err := f.varint()
	return protowire.DecodeBool(v), err
}

func (f field) asDouble() (float64, error) {
	if err := f.expect(protowire.Fixed64Type); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed64(f.raw)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return math.Float64frombits(v), nil
}

func (f field) asBytes() ([]byte, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeBytes(f.raw)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return v, nil
}

func (f field) asString() (string, error) {
	v, err := f.asBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(v) {
		return "", fmt.Errorf("field %d: %w", f.num, ErrInvalidUTF8)
	}
	return string(v), nil
}

// appendDoubles accepts both packed and unpacked encodings of a repeated
// double, as proto3 parsers must.
func (f field) appendDoubles(dst []float64) ([]float64, error) {
	if f.typ == protowire.Fixed64Type {
		v, err := f.asDouble()
		return append(dst, v), err
	}

	packed, err := f.asBytes()
	if err != nil {
		return dst, err
	}
	if len(packed)%8 != 0 {
		return dst, fmt.Errorf("field %d: packed doubles: %w", f.num, protowire.ParseError(-1))
	}
	if dst == nil {
		dst = make([]float64, 0, len(packed)/8)
	}
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed64(packed)
		if n < 0 {
			return dst, protowire.ParseError(n)
		}
		dst = append(dst, math.Float64frombits(v))
		packed = packed[n:]
	}
	return dst, nil
}

// asMatrix merges the sub-message into m, allocating it on first sight.
func (f field) asMatrix(m *Matrix) (*Matrix, error) {
	raw, err := f.asBytes()
	if err != nil {
		return m, err
	}
	if m == nil {
		m = &Matrix{}
		return m, m.UnmarshalWire(raw)
	}
	// Repeated occurrences of a message field merge into the first.
	var next Matrix
	if err := next.UnmarshalWire(raw); err != nil {
		return m, err
	}
	if next.Rows != 0 {
		m.Rows = next.Rows
	}
	if next.Cols != 0 {
		m.Cols = next.Cols
	}
	m.Data = append(m.Data, next.Data...)
	return m, nil
}
