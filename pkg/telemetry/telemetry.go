// Package telemetry exposes request metrics on /metrics and logs slow
// requests. Overhead is a counter bump and a histogram observation per
// request; only requests past slowThreshold produce a log line.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marginalia/pkg/logger"
)

const slowThreshold = 200 * time.Millisecond

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marginalia",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marginalia",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	annotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marginalia",
		Name:      "annotations_total",
		Help:      "Annotation operations by kind.",
	}, []string{"op"})

	sweepOrphans = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "marginalia",
		Name:      "sweep_orphan_annotations",
		Help:      "Orphaned annotations found by the last sweep.",
	})
)

// CountAnnotationOp records one annotation operation (created, focused,
// updated, deleted).
func CountAnnotationOp(op string) {
	annotationsTotal.WithLabelValues(op).Inc()
}

// SetSweepOrphans records the orphan count from the latest sweep run.
func SetSweepOrphans(n int) {
	sweepOrphans.Set(float64(n))
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records timing and status for every request. The metric route
// label is the mux path template so cardinality stays bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		elapsed := time.Since(start)
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		if elapsed >= slowThreshold {
			logger.Warn("slow_request",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds())
		}
	})
}
