package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tradejournal/backend/internal/analytics"
	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/internal/journal"
	"github.com/wonny/tradejournal/backend/pkg/logger"
)

// AnalyticsService is what the handlers need from journal.Service
type AnalyticsService interface {
	Location() *time.Location
	Summary(ctx context.Context, filter contracts.TradeFilter) (contracts.PerformanceSummary, error)
	Breakdown(ctx context.Context, filter contracts.TradeFilter, dim analytics.Dimension) ([]contracts.DimensionalSummary, error)
	Distribution(ctx context.Context, filter contracts.TradeFilter, buckets int, width float64) ([]contracts.PnlDistributionBucket, error)
	EquityCurve(ctx context.Context, filter contracts.TradeFilter) ([]contracts.EquityPoint, error)
	Daily(ctx context.Context, filter contracts.TradeFilter) ([]contracts.DailyPerformance, error)
	Monthly(ctx context.Context, filter contracts.TradeFilter) ([]contracts.MonthlyPerformance, error)
	Dashboard(ctx context.Context, filter contracts.TradeFilter) (*contracts.Dashboard, error)
	Import(ctx context.Context, userID string, r io.Reader) (journal.ImportResult, error)
}

// AnalyticsHandler handles analytics and import endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyticsHandler struct {
	service AnalyticsService
	logger  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  log.WithComponent("api"),
	}
}

// RegisterRoutes mounts the analytics routes on an /api subrouter
func (h *AnalyticsHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/analytics/summary", h.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/analytics/breakdown/{dimension}", h.GetBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/analytics/distribution", h.GetDistribution).Methods(http.MethodGet)
	api.HandleFunc("/analytics/equity-curve", h.GetEquityCurve).Methods(http.MethodGet)
	api.HandleFunc("/analytics/daily", h.GetDaily).Methods(http.MethodGet)
	api.HandleFunc("/analytics/monthly", h.GetMonthly).Methods(http.MethodGet)
	api.HandleFunc("/analytics/dashboard", h.GetDashboard).Methods(http.MethodGet)
	api.HandleFunc("/trades/import", h.ImportTrades).Methods(http.MethodPost)
}

// parseQuery binds the query string; on failure the response is already written
func (h *AnalyticsHandler) parseQuery(w http.ResponseWriter, r *http.Request) (AnalyticsQuery, contracts.TradeFilter, bool) {
	q, verrs := bindAnalyticsQuery(r)
	if len(verrs) > 0 {
		respondValidation(w, verrs)
		return q, contracts.TradeFilter{}, false
	}

	filter, err := q.Filter(h.service.Location())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return q, filter, false
	}

	return q, filter, true
}

// fail maps service errors to HTTP status codes
func (h *AnalyticsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isClientError(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithError(err).WithField("path", r.URL.Path).Error("analytics request failed")
	respondError(w, http.StatusInternalServerError, "Failed to compute analytics")
}

func isClientError(err error) bool {
	for _, target := range []error{
		journal.ErrInvalidFilter,
		journal.ErrImportRow,
		analytics.ErrUnknownDimension,
		analytics.ErrInvalidBucketCount,
		analytics.ErrInvalidBucketWidth,
		analytics.ErrTooManyBuckets,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetSummary returns the performance summary
// GET /api/analytics/summary?user_id=...
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetBreakdown returns per-partition summaries
// GET /api/analytics/breakdown/{dimension}?user_id=...
func (h *AnalyticsHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	dim, err := analytics.ParseDimension(mux.Vars(r)["dimension"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.Breakdown(r.Context(), filter, dim)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dimension": dim,
		"items":     result,
	})
}

// GetDistribution returns the P&L histogram
// GET /api/analytics/distribution?user_id=...&buckets=10&width=0
func (h *AnalyticsHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	q, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	buckets, err := h.service.Distribution(r.Context(), filter, q.BucketCount(), q.Width)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, buckets)
}

// GetEquityCurve returns cumulative equity points
// GET /api/analytics/equity-curve?user_id=...
func (h *AnalyticsHandler) GetEquityCurve(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	curve, err := h.service.EquityCurve(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, curve)
}

// GetDaily returns P&L per day
// GET /api/analytics/daily?user_id=...
func (h *AnalyticsHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	daily, err := h.service.Daily(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, daily)
}

// GetMonthly returns P&L per month
// GET /api/analytics/monthly?user_id=...
func (h *AnalyticsHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	monthly, err := h.service.Monthly(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, monthly)
}

// GetDashboard returns every statistic in one payload
// GET /api/analytics/dashboard?user_id=...
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// ImportTrades stores a CSV journal export
// POST /api/trades/import?user_id=...  (body: text/csv)
func (h *AnalyticsHandler) ImportTrades(w http.ResponseWriter, r *http.Request) {
	q, verrs := bindImportQuery(r)
	if len(verrs) > 0 {
		respondValidation(w, verrs)
		return
	}

	body := http.MaxBytesReader(w, r.Body, q.MaxBytes)
	defer body.Close()

	result, err := h.service.Import(r.Context(), q.UserID, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "CSV body is too large")
			return
		}
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
