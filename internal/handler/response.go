// Package handler — HTTP layer.
//
// Handlers parse requests, call services, and shape responses. No
// business rules live here: a handler that starts checking passwords or
// sorting repositories is a handler that grew into a service.
package handler

// RESPONSE HELPERS:
// Every endpoint answers in the same envelope so the frontend never has
// to guess the shape:
//
//	success: {"success": true,  "message": "...", "data": {...}}
//	failure: {"success": false, "error": "not_found", "message": "..."}
//
// The `code` field appears only where the client needs to branch on it
// (TOKEN_EXPIRED → silent refresh instead of a logout).

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/thinktank/internal/apperror"
)

// SuccessResponse is the envelope for every 2xx answer.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx answer.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`          // machine-readable type (e.g. "not_found")
	Message string `json:"message"`        // human-readable description
	Code    string `json:"code,omitempty"` // client branch hint (e.g. "TOKEN_EXPIRED")
}

// writeJSON sends a JSON response with the given status code.
// Headers and status MUST go out before the body: once Encode writes,
// the headers are committed and any later change is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone — logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeSuccess wraps data in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError maps a domain error to its HTTP status and sends the error
// envelope.
//
// The service layer returns apperror sentinels; this is the single place
// they become status codes. errors.Is walks the whole chain, so services
// are free to wrap with fmt.Errorf("%w", ...) context along the way.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest // 400
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrInvalidInput):
			status = http.StatusBadRequest // 400
			errorType = "invalid_input"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized // 401
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrBlocked):
			status = http.StatusForbidden // 403
			errorType = "blocked"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict // 409
			errorType = "conflict"
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests // 429
			errorType = "rate_limited"
		case errors.Is(err, apperror.ErrTimeout):
			status = http.StatusGatewayTimeout // 504
			errorType = "timeout"
		}

		writeJSON(w, status, ErrorResponse{
			Success: false,
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — generic 500. The raw message might carry connection
	// strings or upstream payloads; it stays in the logs.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
