// Package id generates the identifiers the engine stamps on requests and
// trace spans.
//
// Every id is a ULID, optionally behind a short type prefix (req_, trc_,
// spn_), so ids sort by creation time and read clearly in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies one inbound call, gRPC or HTTP.
type RequestID string

// TraceID identifies a trace spanning client, gateway and engine.
type TraceID string

// SpanID identifies one operation inside a trace.
type SpanID string

const (
	RequestPrefix = "req"
	TracePrefix   = "trc"
	SpanPrefix    = "spn"
)

// Generator produces ULIDs that are strictly increasing per generator, even
// within one millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// e.g. a seeded reader for reproducible tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(entropy, 0)}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewRequestID generates a request id.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewTraceID generates a trace id.
func NewTraceID() TraceID {
	return TraceID(Default().GenerateWithPrefix(TracePrefix))
}

// NewSpanID generates a span id.
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (id RequestID) String() string { return string(id) }
func (id TraceID) String() string   { return string(id) }
func (id SpanID) String() string    { return string(id) }

// IsValid reports whether s is a ULID, with or without a type prefix.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses a ULID, stripping a type prefix if present.
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}
