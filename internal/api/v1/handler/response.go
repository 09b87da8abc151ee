package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"coursehub/internal/service"
	"coursehub/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Error codes returned in JSON { "error": "...", "code": "..." }.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeNotImplemented = "NOT_IMPLEMENTED"
	ErrCodeUnavailable    = "UNAVAILABLE"
	ErrCodeInternal       = "INTERNAL"
)

func writeErr(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": defaultErrCode(status)})
}

func defaultErrCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusNotImplemented:
		return ErrCodeNotImplemented
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON body into req and validates it. An empty body is
// treated as an empty object so missing fields surface as validation errors.
// On failure it writes a 400 with invalidMsg and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, validate *validator.Validate, req any, invalidMsg string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, invalidMsg)
		return false
	}
	return true
}

// failer turns service errors into responses for one resource.
type failer struct {
	resource string
	logger   zerolog.Logger
	reporter telemetry.Reporter
}

// fail writes the response for err. Unclassified errors are logged, reported
// and answered with a 500 carrying internalMsg.
func (f failer) fail(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeErr(w, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, service.ErrNotFound):
		writeErr(w, http.StatusNotFound, f.resource+" not found")
	case errors.Is(err, service.ErrExportDisabled):
		writeErr(w, http.StatusNotImplemented, err.Error())
	default:
		f.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(internalMsg)
		f.reporter.Capture(r.Context(), err, map[string]string{
			"resource": f.resource,
			"method":   r.Method,
			"path":     r.URL.Path,
		})
		writeErr(w, http.StatusInternalServerError, internalMsg)
	}
}
