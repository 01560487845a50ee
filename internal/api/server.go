package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/tradejournal/backend/pkg/config"
	"github.com/wonny/tradejournal/backend/pkg/logger"
	"github.com/wonny/tradejournal/backend/pkg/metrics"
)

// Server runs the API listener and, when enabled, the metrics listener
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer    *http.Server
	metricsServer *http.Server
	logger        *logger.Logger
	config        *config.Config
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler, rec *metrics.Recorder) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log.WithComponent("api"),
		config: cfg,
	}

	if cfg.MetricsEnabled && rec != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		s.metricsServer = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// Start serves until Shutdown is called or a listener fails
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	if s.metricsServer != nil {
		go func() {
			s.logger.WithField("port", s.config.MetricsPort).Info("Starting metrics server")
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	go func() {
		s.logger.WithFields(map[string]interface{}{
			"port": s.config.Port,
			"env":  s.config.Env,
		}).Info("Starting API server")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// Shutdown gracefully shuts down both listeners
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("metrics server shutdown failed")
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
