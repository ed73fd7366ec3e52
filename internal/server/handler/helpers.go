package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/service"
)

// maxBodyBytes caps request bodies; a 15-leg slip is well under this.
const maxBodyBytes = 1 << 20

// Paging bounds the limit query parameter.
type Paging struct {
	Default int
	Max     int
}

// DefaultPaging is used when a handler is built with a zero Paging.
var DefaultPaging = Paging{Default: 50, Max: 500}

func (p Paging) orDefault() Paging {
	if p.Default <= 0 || p.Max <= 0 {
		return DefaultPaging
	}
	return p
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrLockHeld),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOdds),
		errors.Is(err, domain.ErrEmptyLegs),
		errors.Is(err, domain.ErrIncompleteLeg),
		errors.Is(err, domain.ErrTooManyLegs),
		errors.Is(err, domain.ErrUnknownMarket),
		errors.Is(err, domain.ErrInvalidStake),
		errors.Is(err, domain.ErrIncompleteSettlement),
		errors.Is(err, domain.ErrInvalidAccount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrExportStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports err to the client. Server-side failures are
// logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.ErrorContext(r.Context(), "handler: "+op+" failed",
			slog.String("error", err.Error()),
		)
		writeError(w, status, op+" failed")
		return
	}
	writeError(w, status, err.Error())
}

// parseListOpts extracts pagination parameters from the query string,
// clamped to p.
func parseListOpts(r *http.Request, p Paging) domain.ListOpts {
	p = p.orDefault()
	q := r.URL.Query()

	limit := p.Default
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > p.Max {
		limit = p.Max
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{
		Limit:  limit,
		Offset: offset,
	}
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
