package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/search"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON writes a plain Go value as JSON
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps any value in { data: ... }
func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Code: code, Message: msg})
}

// writeServiceError maps domain and search errors to HTTP statuses.
// Anything unexpected is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Code:    "VALIDATION_ERROR",
			Message: verr.Message,
			Field:   verr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrUnsupportedVersion):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_VERSION", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusUnprocessableEntity, "QUOTA_EXCEEDED", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, search.ErrCircuitOpen):
		writeError(w, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "search backend temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	default:
		switch search.ClassifyError(err) {
		case search.ErrorTypeTimeout:
			writeError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "search backend timed out")
		case search.ErrorTypeRateLimit:
			writeError(w, http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMITED", "search backend is rate limiting")
		case search.ErrorTypeNetwork, search.ErrorTypeUpstream5xx:
			writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "search backend error")
		default:
			log.Error("unhandled error", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
}

// decodeJSON reads a JSON body into dst, rejecting oversized or malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "request body is required")
		}
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// queryInt reads an integer query parameter, def when absent or invalid.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
