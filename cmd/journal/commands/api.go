package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradejournal/backend/internal/api"
	"github.com/wonny/tradejournal/backend/internal/api/handlers"
	"github.com/wonny/tradejournal/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health
  GET  /api/analytics/summary
  GET  /api/analytics/breakdown/{dimension}
  GET  /api/analytics/distribution
  GET  /api/analytics/equity-curve
  GET  /api/analytics/daily
  GET  /api/analytics/monthly
  GET  /api/analytics/dashboard
  POST /api/trades/import

Example:
  go run ./cmd/journal api
  go run ./cmd/journal api --port 9090 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "dashboard_refresh 작업도 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	limiter := api.NewLimiter(
		redis.NewRateLimiter(a.redis, "api"),
		a.cfg.RateLimit.Requests,
		a.cfg.RateLimit.Window,
	)

	trusted, err := a.cfg.RateLimit.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	health := handlers.NewHealthHandler("tradejournal", map[string]handlers.HealthCheck{
		"database": a.db.Ping,
		"redis":    a.redis.Ping,
	})

	router := api.NewRouter(api.RouterDeps{
		Analytics: handlers.NewAnalyticsHandler(a.service, a.log),
		Health:    health,
		Limiter:   limiter,
		Metrics:   a.metrics,
		Logger:    a.log,

		TrustedProxies: trusted,
	})

	server := api.New(a.cfg, a.log, router, a.metrics)

	if apiWithScheduler {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if a.cfg.MetricsEnabled {
		fmt.Printf("   Metrics on http://localhost:%s/metrics\n", a.cfg.MetricsPort)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
