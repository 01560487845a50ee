// Package jobs holds the scheduled jobs of the journal backend.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/pkg/logger"
)

// ScopeLister finds user/account scopes with recent trade activity
type ScopeLister interface {
	ListActiveScopes(ctx context.Context, since time.Time) ([]contracts.TradeFilter, error)
}

// DashboardRefresher recomputes a dashboard and stores it in the cache
type DashboardRefresher interface {
	Refresh(ctx context.Context, filter contracts.TradeFilter) (*contracts.Dashboard, error)
}

// DashboardRefreshJob warms the dashboard cache for recently active scopes
type DashboardRefreshJob struct {
	scopes    ScopeLister
	refresher DashboardRefresher
	schedule  string
	lookback  time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewDashboardRefreshJob creates the job; lookback bounds how far back activity counts
func NewDashboardRefreshJob(scopes ScopeLister, refresher DashboardRefresher, schedule string, lookback time.Duration, log *logger.Logger) *DashboardRefreshJob {
	return &DashboardRefreshJob{
		scopes:    scopes,
		refresher: refresher,
		schedule:  schedule,
		lookback:  lookback,
		logger:    log.WithComponent("dashboard_refresh"),
		now:       time.Now,
	}
}

// Name returns the job name
func (j *DashboardRefreshJob) Name() string {
	return "dashboard_refresh"
}

// Schedule returns the configured cron expression
func (j *DashboardRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every active scope. A failing scope does not stop the rest;
// the run fails only when no scope could be refreshed.
func (j *DashboardRefreshJob) Run(ctx context.Context) error {
	since := j.now().Add(-j.lookback)

	scopes, err := j.scopes.ListActiveScopes(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to list active scopes: %w", err)
	}

	if len(scopes) == 0 {
		j.logger.Debug("No active scopes to refresh")
		return nil
	}

	var errs []error
	for _, scope := range scopes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.refresher.Refresh(ctx, scope); err != nil {
			j.logger.WithError(err).WithField("scope", scope.Scope()).Warn("dashboard refresh failed")
			errs = append(errs, fmt.Errorf("%s: %w", scope.Scope(), err))
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"scopes": len(scopes),
		"failed": len(errs),
	}).Info("Dashboard refresh completed")

	if len(errs) == len(scopes) {
		return errors.Join(errs...)
	}
	return nil
}
