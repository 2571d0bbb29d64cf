package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-retail-api/internal/domain"
)

// Envelope is the shared response wrapper on every endpoint.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorBody is the machine-readable error payload.
type ErrorBody struct {
	Code       string `json:"code"`
	RetryAfter int    `json:"retryAfter,omitempty"` // seconds, rate-limit errors only
}

// Error codes clients can branch on.
const (
	codeValidation  = "validation_error"
	codeConflict    = "conflict"
	codeAuth        = "auth_error"
	codeRateLimited = "rate_limited"
	codeInternal    = "internal_error"
)

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Message:   message,
		Error:     &ErrorBody{Code: code},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// httpError maps a service error onto the envelope by its tagged kind.
// NotFound never surfaces distinctly on auth endpoints; it degrades to a
// generic auth error so nothing leaks about which records exist.
func httpError(w http.ResponseWriter, err error, dev bool) {
	var rle *domain.RateLimitError
	switch {
	case errors.As(err, &rle):
		w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, Envelope{
			Success:   false,
			Message:   "Too many requests. Please try again later.",
			Error:     &ErrorBody{Code: codeRateLimited, RetryAfter: rle.RetryAfter},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error(), codeValidation)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), codeConflict)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error(), codeAuth)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "Unauthorized.", codeAuth)
	default:
		slog.Error("internal error", "err", err)
		msg := "Internal server error."
		if dev {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg, codeInternal)
	}
}
