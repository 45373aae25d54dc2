package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyddadnatur",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyddadnatur",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream registry metrics
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total requests sent to the upstream registries",
	}, []string{"source", "op", "outcome"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyddadnatur",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream registry request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source", "op"})

	// ExtentFallbacks counts bulk-extent calls that fell back to
	// client-side bounding-box computation.
	ExtentFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "extent",
		Name:      "fallbacks_total",
		Help:      "Extent requests served by client-side computation after a primary failure",
	}, []string{"source"})

	// ExtentPrimaryHits counts bulk-extent calls served by the
	// upstream aggregate endpoint.
	ExtentPrimaryHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "extent",
		Name:      "primary_total",
		Help:      "Extent requests served by the upstream aggregate endpoint",
	}, []string{"source"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyddadnatur",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Timer measures one upstream request.
type Timer struct {
	source, op string
	start      time.Time
}

// UpstreamTimer starts timing an upstream registry request.
func UpstreamTimer(source, op string) *Timer {
	return &Timer{source: source, op: op, start: time.Now()}
}

// Done records duration and outcome for the timed request.
func (t *Timer) Done(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequestsTotal.WithLabelValues(t.source, t.op, outcome).Inc()
	upstreamRequestDuration.WithLabelValues(t.source, t.op).Observe(time.Since(t.start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
