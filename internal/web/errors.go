package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or HTML)

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/VendorGrid/internal/core"
	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/payload"
	"github.com/JonMunkholm/VendorGrid/internal/sheet"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
	"github.com/JonMunkholm/VendorGrid/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError logs err and writes a user-friendly response in the format
// the client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	logError(r, err, statusCode, userMsg.Code)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, fieldErrors(err), statusCode)
	default:
		renderErrorPage(w, r, userMsg, statusCode)
	}
}

func logError(r *http.Request, err error, statusCode int, code string) {
	logger := logging.FromContext(r.Context())
	level := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", code,
	)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, fields map[string]string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Fields:  fields,
	})
}

// renderErrorPage writes a full HTML error page.
func renderErrorPage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	render(w, r, statusCode, templates.ErrorPage(msg.Message, msg.Action, msg.Code))
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	render(w, r, statusCode, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
}

// statusFor picks the HTTP status for an operation error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, payload.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, vendor.ErrMissingField),
		errors.Is(err, vendor.ErrInvalidFormat),
		errors.Is(err, grid.ErrInvalidPage),
		errors.Is(err, grid.ErrInvalidPageSize),
		errors.Is(err, grid.ErrInvalidRow),
		errors.Is(err, sheet.ErrEmptySheet),
		errors.Is(err, sheet.ErrNoWorksheet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrFileTooLarge), errors.Is(err, core.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, core.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case core.IsUserFacing(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fieldErrors returns the first message per field of a validation error.
func fieldErrors(err error) map[string]string {
	es, ok := vendor.AsValidationErrors(err)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(es))
	for _, e := range es {
		if _, seen := fields[e.Field]; !seen {
			fields[e.Field] = e.Message
		}
	}
	return fields
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
