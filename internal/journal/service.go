// Package journal serves trade analytics for journal users: it loads trades
// from the repository, runs the analytics engine and caches dashboards.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/wonny/tradejournal/backend/internal/analytics"
	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/pkg/logger"
	"github.com/wonny/tradejournal/backend/pkg/metrics"
	"github.com/wonny/tradejournal/backend/pkg/redis"
)

// ErrInvalidFilter is returned for filters without a user or with an inverted window
var ErrInvalidFilter = errors.New("invalid trade filter")

// ServiceConfig carries the analytics settings of the service
type ServiceConfig struct {
	Location         *time.Location
	StartingEquity   float64
	HistogramBuckets int
	CacheTTL         time.Duration // dashboards computed on request
	RefreshTTL       time.Duration // dashboards warmed by Refresh
}

// DashboardCache stores computed dashboards. *redis.Cache implements it.
type DashboardCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// Service computes analytics for journal users
// ⭐ SSOT: 분석 요청 처리 흐름 (조회 → 시간대 변환 → 계산 → 캐시)
type Service struct {
	repo    contracts.TradeRepository
	writer  contracts.TradeWriter
	cache   DashboardCache
	metrics *metrics.Recorder
	logger  *logger.Logger
	cfg     ServiceConfig
	now     func() time.Time
}

// NewService creates a new analytics service.
// writer may be nil for read-only deployments; metrics may be nil.
func NewService(
	repo contracts.TradeRepository,
	writer contracts.TradeWriter,
	cache DashboardCache,
	rec *metrics.Recorder,
	log *logger.Logger,
	cfg ServiceConfig,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.HistogramBuckets <= 0 {
		cfg.HistogramBuckets = analytics.DefaultHistogramBuckets
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = redis.TTLDashboard
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = redis.TTLLong
	}

	return &Service{
		repo:    repo,
		writer:  writer,
		cache:   cache,
		metrics: rec,
		logger:  log.WithComponent("journal"),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) options() analytics.Options {
	return analytics.Options{StartingEquity: s.cfg.StartingEquity}
}

// Location returns the time zone calendar grouping happens in
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// HistogramBuckets returns the configured default bucket count
func (s *Service) HistogramBuckets() int {
	return s.cfg.HistogramBuckets
}

// loadTrades fetches trades and moves their timestamps into the service zone
func (s *Service) loadTrades(ctx context.Context, filter contracts.TradeFilter) ([]contracts.Trade, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidFilter)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from is after to", ErrInvalidFilter)
	}

	trades, err := s.repo.ListTrades(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}

	return lo.Map(trades, func(t contracts.Trade, _ int) contracts.Trade {
		return t.InLocation(s.cfg.Location)
	}), nil
}

// observe times one analytics computation
func (s *Service) observe(operation string, n int, start time.Time) {
	elapsed := time.Since(start)
	s.metrics.ObserveComputation(operation, n, elapsed)
	s.logger.WithFields(map[string]interface{}{
		"operation": operation,
		"trades":    n,
		"duration":  elapsed,
	}).Debug("analytics computed")
}

// Summary returns the headline statistics for filter
func (s *Service) Summary(ctx context.Context, filter contracts.TradeFilter) (contracts.PerformanceSummary, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return contracts.PerformanceSummary{}, err
	}

	defer s.observe("summary", len(trades), time.Now())
	return analytics.SummarizeWith(trades, s.options()), nil
}

// Breakdown returns per-partition summaries along dim
func (s *Service) Breakdown(ctx context.Context, filter contracts.TradeFilter, dim analytics.Dimension) ([]contracts.DimensionalSummary, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("breakdown_"+string(dim), len(trades), time.Now())
	return analytics.Breakdown(trades, dim, s.options())
}

// Distribution returns the P&L histogram; buckets <= 0 uses the configured default
func (s *Service) Distribution(ctx context.Context, filter contracts.TradeFilter, buckets int, width float64) ([]contracts.PnlDistributionBucket, error) {
	if buckets <= 0 {
		buckets = s.cfg.HistogramBuckets
	}

	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("distribution", len(trades), time.Now())
	return analytics.BuildHistogram(trades, buckets, width)
}

// EquityCurve returns cumulative equity per evaluated trade
func (s *Service) EquityCurve(ctx context.Context, filter contracts.TradeFilter) ([]contracts.EquityPoint, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("equity_curve", len(trades), time.Now())
	return analytics.EquityCurve(trades, s.cfg.StartingEquity), nil
}

// Daily returns P&L per exit day in the service time zone
func (s *Service) Daily(ctx context.Context, filter contracts.TradeFilter) ([]contracts.DailyPerformance, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("daily", len(trades), time.Now())
	return analytics.DailyPnL(trades), nil
}

// Monthly returns P&L per exit month in the service time zone
func (s *Service) Monthly(ctx context.Context, filter contracts.TradeFilter) ([]contracts.MonthlyPerformance, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("monthly", len(trades), time.Now())
	return analytics.MonthlyPnL(trades), nil
}

// Dashboard returns every statistic for filter, served from cache when fresh
func (s *Service) Dashboard(ctx context.Context, filter contracts.TradeFilter) (*contracts.Dashboard, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidFilter)
	}

	var dashboard contracts.Dashboard
	hit, err := s.cache.GetOrSet(ctx, redis.DashboardKey(filter.CacheKey()), &dashboard, s.cfg.CacheTTL,
		func() (interface{}, error) {
			return s.computeDashboard(ctx, filter)
		})
	if err != nil {
		return nil, err
	}

	if hit {
		s.metrics.CacheHit()
	} else {
		s.metrics.CacheMiss()
	}

	return &dashboard, nil
}

// Refresh recomputes the dashboard for filter and overwrites the cache entry.
// The entry lives for RefreshTTL so it survives until the next scheduled refresh.
func (s *Service) Refresh(ctx context.Context, filter contracts.TradeFilter) (*contracts.Dashboard, error) {
	dashboard, err := s.computeDashboard(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, redis.DashboardKey(filter.CacheKey()), dashboard, s.cfg.RefreshTTL); err != nil {
		s.logger.WithError(err).WithField("scope", filter.Scope()).Warn("failed to cache dashboard")
	}

	return dashboard, nil
}

func (s *Service) computeDashboard(ctx context.Context, filter contracts.TradeFilter) (*contracts.Dashboard, error) {
	trades, err := s.loadTrades(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("dashboard", len(trades), time.Now())

	opts := analytics.DashboardOptions{
		Options:          s.options(),
		HistogramBuckets: s.cfg.HistogramBuckets,
		Now:              s.now().In(s.cfg.Location),
	}
	return analytics.BuildDashboard(trades, opts)
}

// ImportResult reports what an import stored
type ImportResult struct {
	BatchID string `json:"batch_id"`
	Parsed  int    `json:"parsed"`
	Saved   int    `json:"saved"`
}

// Import parses a CSV journal export for userID, stores the trades and drops
// the user's cached dashboards
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (ImportResult, error) {
	if s.writer == nil {
		return ImportResult{}, errors.New("trade import is not configured")
	}
	if userID == "" {
		return ImportResult{}, fmt.Errorf("%w: user id is required", ErrInvalidFilter)
	}

	batchID := uuid.NewString()
	trades, err := ParseCSV(r, userID, s.cfg.Location)
	if err != nil {
		s.logger.WithError(err).WithField("batch_id", batchID).Warn("trade import rejected")
		return ImportResult{}, err
	}

	saved, err := s.writer.SaveTrades(ctx, trades)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to save imported trades: %w", err)
	}
	s.metrics.TradesImported(saved)

	if err := s.Invalidate(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to invalidate dashboards")
	}

	s.logger.WithFields(map[string]interface{}{
		"batch_id": batchID,
		"user_id":  userID,
		"parsed":   len(trades),
		"saved":    saved,
	}).Info("trades imported")

	return ImportResult{BatchID: batchID, Parsed: len(trades), Saved: saved}, nil
}

// Invalidate drops every cached result computed for userID
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	deleted, err := s.cache.DeletePattern(ctx, redis.UserPattern(userID))
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"deleted": deleted,
	}).Debug("dashboard cache invalidated")
	return nil
}
