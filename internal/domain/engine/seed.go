package engine

import (
	"sync/atomic"
	"time"
)

// SeedSource hands out Monte Carlo seeds. Implementations must be safe for
// concurrent use.
type SeedSource interface {
	NextSeed() int64
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func() int64

// NextSeed calls f.
func (f SeedFunc) NextSeed() int64 { return f() }

// MonotonicSeeds derives seeds from the monotonic clock. Seeds are
// nanoseconds since the Unix epoch as observed at construction plus the
// monotonic time elapsed since, bumped so that every call returns a value
// strictly greater than the previous one.
type MonotonicSeeds struct {
	base  int64
	start time.Time
	last  atomic.Int64
}

// NewMonotonicSeeds captures the clock origin.
func NewMonotonicSeeds() *MonotonicSeeds {
	now := time.Now()
	return &MonotonicSeeds{base: now.UnixNano(), start: now}
}

// NextSeed returns a seed strictly greater than any previously returned.
func (s *MonotonicSeeds) NextSeed() int64 {
	candidate := s.base + int64(time.Since(s.start))
	for {
		last := s.last.Load()
		next := candidate
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
