package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

var badRequestErrors = []error{
	entities.ErrValidation,
	entities.ErrTitleRequired,
	entities.ErrInvalidStatus,
	entities.ErrInvalidQuadrant,
	entities.ErrInvalidRange,
	entities.ErrInvalidParent,
	entities.ErrParentNotFound,
	grouping.ErrCalendarSpan,
}

// StatusFor maps an error returned by a handler to an HTTP status and body.
func StatusFor(err error) (int, ports.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ports.ErrorResponse{Message: fmt.Sprint(he.Message)}
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]interface{}, len(ve))
		for _, fe := range ve {
			details[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, ports.ErrorResponse{Message: "validation failed", Details: details}
	}

	if errors.Is(err, entities.ErrTaskNotFound) {
		return http.StatusNotFound, ports.ErrorResponse{Message: entities.ErrTaskNotFound.Error()}
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, ports.ErrorResponse{Message: err.Error()}
		}
	}

	if errors.Is(err, services.ErrInvalidToken) {
		return http.StatusUnauthorized, ports.ErrorResponse{Message: "Invalid token"}
	}

	return http.StatusInternalServerError, ports.ErrorResponse{Message: http.StatusText(http.StatusInternalServerError)}
}

// ErrorHandler renders handler errors as JSON. Server-side failures are
// logged; their details never reach the client.
func ErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := StatusFor(err)
		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
