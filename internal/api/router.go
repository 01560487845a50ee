package api

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tradejournal/backend/internal/api/handlers"
	"github.com/wonny/tradejournal/backend/pkg/logger"
	"github.com/wonny/tradejournal/backend/pkg/metrics"
)

// RouterDeps bundles what the router wires together
type RouterDeps struct {
	Analytics *handlers.AnalyticsHandler
	Health    *handlers.HealthHandler
	Limiter   Limiter
	Metrics   *metrics.Recorder
	Logger    *logger.Logger

	// TrustedProxies may set X-Forwarded-For for rate limiting
	TrustedProxies []netip.Prefix
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", deps.Health.GetHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, deps.TrustedProxies, deps.Logger))
	}
	deps.Analytics.RegisterRoutes(api)

	// 바깥쪽부터: recovery → metrics → logging
	r.Use(recoveryMiddleware(deps.Logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(loggingMiddleware(deps.Logger))

	return r
}

// statusWriter captures the status code for request logs
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			entry := log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   sw.status,
				"duration": time.Since(start),
			})
			if sw.status >= http.StatusInternalServerError {
				entry.Warn("HTTP request failed")
				return
			}
			entry.Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
