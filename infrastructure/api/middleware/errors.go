package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/infrastructure/api/jsonapi"
	"github.com/helixml/gitsearch/internal/log"
)

// ErrAuthentication indicates a missing or unknown token.
var ErrAuthentication = errors.New("authentication failed")

// APIError is an error with an explicit HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{
		code:    code,
		message: message,
		cause:   cause,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// AuthenticationError represents a rejected credential.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Unwrap returns ErrAuthentication for errors.Is compatibility.
func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// WriteError writes err as a JSON:API error document. Validation errors map
// to 400, unimplemented operations to 501, a closed client to 503, APIErrors
// to their own code and everything else to 500 without leaking the cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := "internal service error"

	var apiErr *APIError
	var authErr *AuthenticationError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		title = "Unauthorized"
		detail = authErr.message
	case errors.Is(err, catalog.ErrValidation):
		status = http.StatusBadRequest
		title = "Validation Error"
		detail = err.Error()
	case errors.Is(err, catalog.ErrNotImplemented):
		status = http.StatusNotImplemented
		title = "Not Implemented"
		detail = err.Error()
	case errors.Is(err, service.ErrClientClosed):
		status = http.StatusServiceUnavailable
		title = "Service Unavailable"
		detail = "service is shutting down"
	}

	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	apiError := jsonapi.NewError(strconv.Itoa(status), title, detail)
	apiError.ID = log.CorrelationID(r.Context())

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(apiError))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
