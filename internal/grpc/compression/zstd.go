// Package compression registers a zstd compressor with gRPC.
//
// Import it for side effects on both ends of a connection, then select it
// per call with grpc.UseCompressor(compression.Name).
package compression

import (
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc/encoding"
)

// Name is the grpc-encoding value for zstd.
const Name = "zstd"

// maxWindow caps decoder memory per message.
const maxWindow = 64 << 20

func init() {
	encoding.RegisterCompressor(newCompressor())
}

type compressor struct {
	encoders sync.Pool
	decoders sync.Pool
}

func newCompressor() *compressor {
	c := &compressor{}
	c.encoders.New = func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedFastest),
		)
		if err != nil {
			return err
		}
		return enc
	}
	c.decoders.New = func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxWindow),
		)
		if err != nil {
			return err
		}
		return dec
	}
	return c
}

func (c *compressor) Name() string { return Name }

func (c *compressor) Compress(w io.Writer) (io.WriteCloser, error) {
	switch v := c.encoders.Get().(type) {
	case *zstd.Encoder:
		v.Reset(w)
		return &writer{Encoder: v, pool: &c.encoders}, nil
	case error:
		return nil, v
	default:
		return nil, errors.New("zstd: bad encoder in pool")
	}
}

func (c *compressor) Decompress(r io.Reader) (io.Reader, error) {
	switch v := c.decoders.Get().(type) {
	case *zstd.Decoder:
		if err := v.Reset(r); err != nil {
			c.decoders.Put(v)
			return nil, err
		}
		return &reader{Decoder: v, pool: &c.decoders}, nil
	case error:
		return nil, v
	default:
		return nil, errors.New("zstd: bad decoder in pool")
	}
}

type writer struct {
	*zstd.Encoder
	pool *sync.Pool
}

func (w *writer) Close() error {
	err := w.Encoder.Close()
	w.pool.Put(w.Encoder)
	return err
}

// reader hands its decoder back to the pool once the stream is drained.
type reader struct {
	*zstd.Decoder
	pool *sync.Pool
	done bool
}

func (r *reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n, err := r.Decoder.Read(p)
	if err == io.EOF {
		r.done = true
		r.pool.Put(r.Decoder)
	}
	return n, err
}
