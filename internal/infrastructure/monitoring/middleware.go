package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			reqSize,
			respSize,
		)
	}
}

// Timer measures one gRPC call.
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
}

// NewTimer starts timing method and marks it in flight.
func NewTimer(metrics *Metrics, method string) *Timer {
	metrics.GRPCInFlight.Inc()
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
	}
}

// Stop records the call with its status code.
func (t *Timer) Stop(code string) {
	t.metrics.GRPCInFlight.Dec()
	t.metrics.RecordGRPCCall(t.method, code, time.Since(t.start))
}
