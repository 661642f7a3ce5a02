package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Unix(1_700_000_000, 0)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		requests      []bool // true = success
		expectedState State
	}{
		{"stays closed on successes", []bool{true, true, true}, StateClosed},
		{"stays closed below threshold", []bool{false, false, true, false}, StateClosed},
		{"opens after consecutive failures", []bool{false, false, false}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", Settings{
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
			})

			for _, success := range tt.requests {
				if success {
					_ = breaker.Execute(succeed)
				} else {
					_ = breaker.Execute(fail)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{})

	require.NoError(t, breaker.Execute(succeed))

	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, breaker.Execute(fail), errBoom)

	counts = breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerOpenRejectsWithoutCalling(t *testing.T) {
	breaker := New("test", Settings{
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 2 },
	})

	_ = breaker.Execute(fail)
	_ = breaker.Execute(fail)
	require.Equal(t, StateOpen, breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		MaxRequests: 2,
		Timeout:     time.Second,
		Now:         clk.Now,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 2 },
	})

	_ = breaker.Execute(fail)
	_ = breaker.Execute(fail)
	require.Equal(t, StateOpen, breaker.State())

	clk.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Execute(succeed))
	assert.Equal(t, StateHalfOpen, breaker.State())
	require.NoError(t, breaker.Execute(succeed))
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		Timeout:     time.Second,
		Now:         clk.Now,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
	})

	_ = breaker.Execute(fail)
	clk.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	_ = breaker.Execute(fail)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		Now:         clk.Now,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
	})

	_ = breaker.Execute(fail)
	clk.Advance(2 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- breaker.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.ErrorIs(t, breaker.Execute(succeed), ErrTooManyRequests)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		Interval: time.Minute,
		Now:      clk.Now,
	})

	_ = breaker.Execute(fail)
	require.Equal(t, uint32(1), breaker.Counts().TotalFailures)

	clk.Advance(2 * time.Minute)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, Counts{}, breaker.Counts())
}

func TestBreakerIsSuccessful(t *testing.T) {
	errCaller := errors.New("caller error")
	breaker := New("test", Settings{
		ReadyToTrip:  func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errCaller) },
	})

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, breaker.Execute(func() error { return errCaller }), errCaller)
	}
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, uint32(5), breaker.Counts().TotalSuccesses)
}

func TestDoReturnsValue(t *testing.T) {
	breaker := New("test", Settings{})

	got, err := Do(breaker, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = Do(breaker, func() (int, error) { return 7, errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 7, got)
}

func TestDoRecordsPanicAsFailure(t *testing.T) {
	breaker := New("test", Settings{})

	assert.Panics(t, func() {
		_ = breaker.Execute(func() error { panic("kaboom") })
	})
	assert.Equal(t, uint32(1), breaker.Counts().TotalFailures)
}

func TestBreakerCallbacks(t *testing.T) {
	clk := newClock()
	var transitions []string

	breaker := New("test", Settings{
		Timeout:     time.Second,
		Now:         clk.Now,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 2 },
		OnStateChange: func(name string, from State, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = breaker.Execute(fail)
	_ = breaker.Execute(fail)
	clk.Advance(2 * time.Second)
	_ = breaker.State()
	_ = breaker.Execute(succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}
