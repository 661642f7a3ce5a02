package engine

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	// Registers the stock "proto" codec first so ours replaces it below.
	_ "google.golang.org/grpc/encoding/proto"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content subtype the codec registers under. Reusing the
// stock name keeps the wire format compatible with any protobuf peer.
const CodecName = "proto"

// Codec marshals engine messages with protowire and defers everything else
// (health checks, reflection, error details) to the protobuf runtime.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

// Name implements encoding.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.AppendWire(nil), nil
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("engine codec: cannot marshal %T", v)
	}
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.UnmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("engine codec: cannot unmarshal into %T", v)
	}
}
