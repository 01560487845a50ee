package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wonny/tradejournal/backend/internal/journal"
	"github.com/wonny/tradejournal/backend/pkg/config"
	"github.com/wonny/tradejournal/backend/pkg/database"
	"github.com/wonny/tradejournal/backend/pkg/logger"
	"github.com/wonny/tradejournal/backend/pkg/metrics"
	"github.com/wonny/tradejournal/backend/pkg/redis"
)

// app holds the wired dependencies shared by the server commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	repo     *journal.Repository
	service  *journal.Service
}

// newApp connects to PostgreSQL and Redis and builds the journal service
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (disabled client when REDIS_ENABLED=false)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(registry)

	// 6. Repository + service
	repo := journal.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = rdb.Close()
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	svc := journal.NewService(repo, repo, redis.NewCache(rdb, "journal"), rec, log, journal.ServiceConfig{
		Location:         loc,
		StartingEquity:   cfg.Analytics.StartingEquity,
		HistogramBuckets: cfg.Analytics.HistogramBuckets,
		CacheTTL:         cfg.Analytics.CacheTTL,
		RefreshTTL:       cfg.Analytics.RefreshTTL,
	})

	log.WithFields(map[string]interface{}{
		"env":      cfg.Env,
		"timezone": loc.String(),
		"redis":    rdb.Enabled(),
	}).Info("Dependencies initialized")

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    rdb,
		registry: registry,
		metrics:  rec,
		repo:     repo,
		service:  svc,
	}, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("redis close failed")
	}
	a.db.Close()
}
