package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// RFC3339 타임스탬프 또는 YYYY-MM-DD 날짜
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, _, err := parseTimestamp(fl.Field().String(), time.UTC)
		return err == nil
	})
	return v
}

// ValidationError describes one rejected query parameter
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AnalyticsQuery holds the query parameters shared by analytics endpoints
type AnalyticsQuery struct {
	UserID    string  `validate:"required,max=128"`
	AccountID string  `validate:"max=128"`
	From      string  `validate:"omitempty,timestamp"`
	To        string  `validate:"omitempty,timestamp"`
	Buckets   *int    `validate:"omitempty,min=1,max=100"` // nil: configured default
	Width     float64 `validate:"min=0"`
}

// BucketCount returns the requested bucket count, or 0 for the configured default
func (q AnalyticsQuery) BucketCount() int {
	return lo.FromPtr(q.Buckets)
}

// ImportQuery holds the query parameters of a trade import
type ImportQuery struct {
	UserID   string `validate:"required,max=128"`
	MaxBytes int64  `default:"10485760"`
}

// bindAnalyticsQuery reads, defaults and validates analytics parameters
func bindAnalyticsQuery(r *http.Request) (AnalyticsQuery, []ValidationError) {
	var q AnalyticsQuery
	values := r.URL.Query()

	q.UserID = strings.TrimSpace(values.Get("user_id"))
	q.AccountID = strings.TrimSpace(values.Get("account_id"))
	q.From = strings.TrimSpace(values.Get("from"))
	q.To = strings.TrimSpace(values.Get("to"))

	var errs []ValidationError
	if v, err := queryIntPtr(values, "buckets"); err != nil {
		errs = append(errs, ValidationError{Code: "ERR_TYPE", Field: "buckets", Message: err.Error()})
	} else {
		q.Buckets = v
	}
	if v, err := queryFloat(values, "width"); err != nil {
		errs = append(errs, ValidationError{Code: "ERR_TYPE", Field: "width", Message: err.Error()})
	} else {
		q.Width = v
	}
	if len(errs) > 0 {
		return q, errs
	}

	return q, validateStruct(&q)
}

// bindImportQuery reads and validates import parameters
func bindImportQuery(r *http.Request) (ImportQuery, []ValidationError) {
	q := ImportQuery{UserID: strings.TrimSpace(r.URL.Query().Get("user_id"))}
	return q, validateStruct(&q)
}

func validateStruct(req interface{}) []ValidationError {
	if err := defaults.Set(req); err != nil {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "timestamp":
		return fmt.Sprintf("%s must be RFC3339 or YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// queryIntPtr returns nil when key is absent so an explicit 0 still reaches validation
func queryIntPtr(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func queryFloat(values url.Values, key string) (float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// Filter converts validated parameters into a repository filter.
// A date-only "to" covers that whole day in loc.
func (q AnalyticsQuery) Filter(loc *time.Location) (contracts.TradeFilter, error) {
	filter := contracts.TradeFilter{UserID: q.UserID, AccountID: q.AccountID}

	if q.From != "" {
		from, _, err := parseTimestamp(q.From, loc)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}

	if q.To != "" {
		to, dateOnly, err := parseTimestamp(q.To, loc)
		if err != nil {
			return filter, err
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.To = &to
	}

	return filter, nil
}

// parseTimestamp accepts RFC3339 or a YYYY-MM-DD date (midnight in loc)
func parseTimestamp(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid timestamp %q", value)
	}
	return t, true, nil
}
