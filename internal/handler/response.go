package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/gateway"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://vendas.app/errors/validation"
	ErrorTypeNotFound     = "https://vendas.app/errors/not-found"
	ErrorTypeUnauthorized = "https://vendas.app/errors/unauthorized"
	ErrorTypeUpstream     = "https://vendas.app/errors/upstream"
	ErrorTypeExport       = "https://vendas.app/errors/export"
	ErrorTypeInternal     = "https://vendas.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBadGatewayError creates a response for upstream failures
func NewBadGatewayError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeUpstream,
		Title:    "Upstream Error",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewExportError creates a response for a failed render
func NewExportError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeExport,
		Title:    "Export Failed",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps local validation failures onto the request field they concern
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrSaleWithoutItems, "items"},
	{domain.ErrInvalidLineItem, "items"},
	{domain.ErrPayerRequired, "payer"},
	{domain.ErrDateRequired, "date"},
	{domain.ErrInvalidStatus, "status"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrInvalidGoal, "goal"},
	{domain.ErrInvalidPeriod, "period"},
	{domain.ErrUnsupportedFormat, "format"},
}

// handleServiceError converts a service error into a problem details response.
// Upstream responses keep their status class and server message.
func handleServiceError(c echo.Context, err error, action string) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = action + " failed upstream"
		}
		switch {
		case errors.Is(apiErr, domain.ErrUnauthorized):
			return NewUnauthorizedError(c, detail)
		case errors.Is(apiErr, domain.ErrNotFound):
			return NewNotFoundError(c, detail)
		case errors.Is(apiErr, domain.ErrInvalidInput):
			return NewValidationError(c, detail, nil)
		}
		log.Warn().Err(err).Int("upstream_status", apiErr.StatusCode).Msg(action + " failed upstream")
		return NewBadGatewayError(c, detail)
	}

	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: err.Error()},
			})
		}
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Upstream rejected the token")
	case errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrExportFailed):
		log.Error().Err(err).Msg(action + " failed")
		return NewExportError(c, "Failed to render report")
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Msg(action + " failed upstream")
		return NewBadGatewayError(c, "Upstream service unavailable")
	}

	log.Error().Err(err).Msg(action + " failed")
	return NewInternalError(c, action+" failed")
}
