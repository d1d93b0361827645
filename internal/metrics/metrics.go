package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lottery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	drawsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "draw",
			Name:      "settled_total",
			Help:      "Draws that reached the settled state.",
		},
		[]string{"tier"},
	)

	drawsUndone = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "draw",
			Name:      "undone_total",
			Help:      "Draws reversed by undo.",
		},
		[]string{"tier"},
	)

	drawFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "draw",
			Name:      "failures_total",
			Help:      "Stop requests that could not produce a winner.",
		},
		[]string{"reason"},
	)

	tierRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lottery",
			Subsystem: "tier",
			Name:      "remaining",
			Help:      "Draws left per tier.",
		},
		[]string{"tier"},
	)

	poolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lottery",
			Subsystem: "pool",
			Name:      "candidates",
			Help:      "Candidates still eligible to win.",
		},
	)

	multiRound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Subsystem: "multi_round",
			Name:      "sessions_total",
			Help:      "Multi-round sessions by how they ended.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		drawsSettled,
		drawsUndone,
		drawFailures,
		tierRemaining,
		poolSize,
		multiRound,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency per matched route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Recorder turns engine events into draw metrics.
type Recorder struct{}

func (Recorder) Publish(ev lottery.Event) {
	if ev.TierKey != "" {
		tierRemaining.WithLabelValues(ev.TierKey).Set(float64(ev.Remaining))
	}
	poolSize.Set(float64(ev.PoolSize))

	switch ev.Type {
	case lottery.EventDrawSettled:
		drawsSettled.WithLabelValues(ev.TierKey).Inc()
	case lottery.EventUndo:
		drawsUndone.WithLabelValues(ev.TierKey).Inc()
	case lottery.EventDrawFailed:
		reason := ev.Message
		if reason == "" {
			reason = "unknown"
		}
		drawFailures.WithLabelValues(reason).Inc()
	case lottery.EventMultiRoundDone:
		multiRound.WithLabelValues("completed").Inc()
	case lottery.EventMultiRoundPartial:
		multiRound.WithLabelValues("partial").Inc()
	case lottery.EventMultiRoundCancel:
		multiRound.WithLabelValues("cancelled").Inc()
	}
}
