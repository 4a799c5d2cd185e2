package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tinoosan/bookkeeping/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "bad_request") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }

// writeDomainErr maps service errors to HTTP responses. Domain rejections are
// logged at WARN and counted; anything unrecognized is a 500 logged at ERROR.
func writeDomainErr(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	var (
		missing  *errs.MissingAccountTypeError
		category *errs.InvalidCategoryTypeError
		hanging  *errs.HangingTransactionsError
		period   *errs.PeriodResolutionError
	)
	reject := func(status int, code string, details map[string]any) {
		guardRejections.WithLabelValues(code).Inc()
		l.Warn("request rejected", "path", r.URL.Path, "code", code, "err", err)
		toJSON(w, status, errorResponse{Error: err.Error(), Code: code, Details: details})
	}
	switch {
	case errors.As(err, &missing):
		reject(http.StatusUnprocessableEntity, "missing_account_type", map[string]any{"account_id": missing.AccountID})
	case errors.As(err, &category):
		reject(http.StatusUnprocessableEntity, "invalid_category_type", map[string]any{
			"account_id":    category.AccountID,
			"account_type":  category.AccountType,
			"category_type": category.CategoryType,
		})
	case errors.As(err, &hanging):
		reject(http.StatusConflict, "hanging_transactions", map[string]any{"account_id": hanging.AccountID, "balance": hanging.Balance})
	case errors.As(err, &period):
		reject(http.StatusUnprocessableEntity, "period_resolution_failure", map[string]any{"entity_id": period.EntityID, "year": period.Year})
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	default:
		l.Error("request failed", "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal_error")
	}
}
