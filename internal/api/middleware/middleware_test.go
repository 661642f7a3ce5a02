package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ComputeEngine/internal/shared/id"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	clock := time.Unix(1000, 0)
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, func() time.Time { return clock })
	r := router(rateLimit(set))

	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1").Code)

	w := get(r, "10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:1").Code)

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1").Code)
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	clock := time.Unix(1000, 0)
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 10, Burst: 10, IdleTTL: time.Minute},
		func() time.Time { return clock })

	set.allow("a")
	set.allow("b")
	require.Equal(t, 2, set.size())

	clock = clock.Add(2 * time.Minute)
	set.allow("c")
	assert.Equal(t, 1, set.size())
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	assert.Equal(t, 100, cfg.RequestsPerSecond)
	assert.Equal(t, 200, cfg.Burst)
	assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
}

func TestRequestIDGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFrom(c)
		c.Status(http.StatusOK)
	})

	w := get(r, "10.0.0.1:1")
	rid := w.Header().Get(HeaderRequestID)
	assert.True(t, strings.HasPrefix(rid, id.RequestPrefix+"_"))
	assert.True(t, id.IsValid(rid))
	assert.Equal(t, rid, seen)
}

func TestRequestIDKeepsValidCallerID(t *testing.T) {
	r := router(RequestID())
	caller := id.NewRequestID().String()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid id", caller, true},
		{"free text", "hello world", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			require.NotEmpty(t, got)
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.True(t, id.IsValid(got))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := router(CORS(DefaultCORSConfig()))

	// httptest requests are for example.com; a matching Origin is same-origin
	// and skips CORS entirely.
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://other.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
