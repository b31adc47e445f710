package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "cryptocap/internal/errors"
)

// QueryParamValidator validates query parameters and writes a problem
// response when one is invalid
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

// ValidateInt validates an integer query parameter. A missing parameter
// yields defaultValue. The bool is false when a response was already written.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.reject(w, r, param, fmt.Sprintf("%s must be a valid integer", param))
		return 0, false
	}

	if err := v.validate.Var(n, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
		v.reject(w, r, param, formatValidationError(param, err))
		return 0, false
	}

	return n, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	if err := v.validate.Var(value, "oneof="+strings.Join(allowed, " ")); err != nil {
		v.reject(w, r, param, formatValidationError(param, err))
		return "", false
	}

	return value, true
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, message string) {
	v.logger.DebugContext(r.Context(), "query parameter rejected",
		slog.String("param", param),
		slog.String("value", r.URL.Query().Get(param)),
	)
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, message))
}

// formatValidationError formats validation error messages
func formatValidationError(field string, err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Sprintf("%s is invalid", field)
	}

	fe := errs[0]
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
