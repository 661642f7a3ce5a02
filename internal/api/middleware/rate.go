package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL evicts per-client limiters unused for this long. Zero means
	// ten minutes.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns the gateway defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per client key.
type limiterSet struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLimiterSet(cfg RateLimitConfig, now func() time.Time) *limiterSet {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &limiterSet{
		cfg:       cfg,
		now:       now,
		visitors:  make(map[string]*visitor),
		lastSweep: now(),
	}
}

func (s *limiterSet) allow(key string) bool {
	now := s.now()

	s.mu.Lock()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	if now.Sub(s.lastSweep) >= s.cfg.IdleTTL {
		for k, other := range s.visitors {
			if now.Sub(other.lastSeen) >= s.cfg.IdleTTL {
				delete(s.visitors, k)
			}
		}
		s.lastSweep = now
	}
	limiter := v.limiter
	s.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newLimiterSet(cfg, time.Now))
}

func rateLimit(set *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
