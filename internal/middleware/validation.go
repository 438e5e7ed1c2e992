package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "taxicli/internal/errors"
)

// QueryParamValidator validates query parameters and answers with a 400
// problem response when one is invalid.
type QueryParamValidator struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryParamValidator{
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt reads an integer parameter within [min, max]. The boolean is
// false when a response has already been written.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be a valid integer", param))
		return 0, false
	}

	if err := v.validate.Var(n, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be between %d and %d", param, min, max))
		return 0, false
	}

	return n, true
}

// ValidateEnum reads a parameter restricted to the allowed values
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	if err := v.validate.Var(value, "oneof="+strings.Join(allowed, " ")); err != nil {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
		return "", false
	}

	return value, true
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, value, message string) {
	v.logger.DebugContext(r.Context(), "invalid query parameter",
		slog.String("param", param),
		slog.String("value", value),
	)
	v.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
		http.StatusBadRequest, "INVALID_PARAMETER", message,
		map[string]string{"param": param, "value": value},
	))
}
