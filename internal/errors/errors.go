package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidParameter   = New(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")
	ErrNotFound           = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// DatasetUnavailableError reports that the enriched dataset could not be loaded
func DatasetUnavailableError(err error) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "Enriched dataset is not available", err.Error())
}

// FileSystemError creates a filesystem error
func FileSystemError(operation string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "FILESYSTEM_ERROR", fmt.Sprintf("File system error during %s", operation), err.Error())
}

// FromAppError maps an AppError onto the matching HTTP error
func FromAppError(err *AppError) *APIError {
	switch err.Type {
	case ErrTypeNotFound:
		return NewWithDetails(http.StatusNotFound, "NOT_FOUND", err.Message, err.Context)
	case ErrTypeValidation:
		return NewWithDetails(http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Message, err.Context)
	case ErrTypeParsing:
		return NewWithDetails(http.StatusUnprocessableEntity, "PARSING_FAILED", err.Error(), err.Context)
	case ErrTypeStorage:
		return New(http.StatusInternalServerError, "STORAGE_ERROR", err.Message)
	case ErrTypeRender:
		return New(http.StatusInternalServerError, "RENDER_FAILED", err.Message)
	default:
		return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Message)
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}
