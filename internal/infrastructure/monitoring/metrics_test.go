package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolatedPerRegistry(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)

	a.RecordValidationFailure("EstimatePi", "non_positive")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ValidationFailures.WithLabelValues("EstimatePi", "non_positive")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ValidationFailures.WithLabelValues("EstimatePi", "non_positive")))
}

func TestTimer(t *testing.T) {
	m := NewMetrics(nil)

	timer := NewTimer(m, "MatMul")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCInFlight))
	timer.Stop("OK")

	assert.Equal(t, 0.0, testutil.ToFloat64(m.GRPCInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCCalls.WithLabelValues("MatMul", "OK")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GRPCDuration))
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordGRPCCall("Greet", "OK", 10*time.Millisecond)
	m.RecordGRPCCall("MatMul", "InvalidArgument", 30*time.Millisecond)
	m.RecordValidationFailure("MatMul", "shape_mismatch")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Calls)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(1), s.ValidationFailures)
	assert.InDelta(t, 0.02, s.AvgDuration, 1e-9)
	assert.Greater(t, s.UptimeSeconds, 0.0)
}

func TestKernelCounters(t *testing.T) {
	m := NewMetrics(nil)

	m.AddPiSamples(1000)
	m.AddMatMulOps(12)
	m.AddStatsValues(5)

	assert.Equal(t, 1000.0, testutil.ToFloat64(m.PiSamples))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.MatMulOps))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.StatsValues))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(NewRegistry())

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/engine/hello", func(c *gin.Context) { c.String(http.StatusOK, "hi") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/engine/hello", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/engine/hello", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "engine_http_requests_total"))
	assert.True(t, strings.Contains(text, "engine_uptime_seconds"))
	assert.True(t, strings.Contains(text, "go_goroutines"))
}
