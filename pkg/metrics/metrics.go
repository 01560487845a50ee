// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the analytics service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradejournal"

// Recorder owns every collector of the service.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: Prometheus 컬렉터는 여기서만 정의
type Recorder struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	computeDuration *prometheus.HistogramVec
	tradesProcessed *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	importedTrades  prometheus.Counter
	jobRuns         *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
		computeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing analytics per operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		tradesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "trades_processed_total",
			Help:      "Trades fed into analytics computations",
		}, []string{"operation"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "cache_lookups_total",
			Help:      "Dashboard cache lookups by result",
		}, []string{"result"}),
		importedTrades: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "imported_trades_total",
			Help:      "Trades stored through CSV import",
		}),
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions by outcome",
		}, []string{"job", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// ObserveComputation records how long one analytics operation took over n trades
func (r *Recorder) ObserveComputation(operation string, n int, d time.Duration) {
	if r == nil {
		return
	}
	r.computeDuration.WithLabelValues(operation).Observe(d.Seconds())
	r.tradesProcessed.WithLabelValues(operation).Add(float64(n))
}

// CacheHit counts a dashboard served from cache
func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a dashboard computed on demand
func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues("miss").Inc()
}

// TradesImported counts trades stored by an import
func (r *Recorder) TradesImported(n int) {
	if r == nil {
		return
	}
	r.importedTrades.Add(float64(n))
}

// JobRun counts one scheduled job execution
func (r *Recorder) JobRun(job string, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	r.jobRuns.WithLabelValues(job, status).Inc()
}

// Middleware records request count, latency and in-flight requests.
// Routes are labeled by their mux path template to keep cardinality low.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, req)

		route := routeLabel(req)
		r.httpRequests.WithLabelValues(route, req.Method, strconv.Itoa(rw.status)).Inc()
		r.httpDuration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
