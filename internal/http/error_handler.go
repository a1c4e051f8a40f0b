package http

import (
	"errors"
	"fmt"
	"net/http"

	"sharelink-service/internal/http/middleware"
	apperrors "sharelink-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

// CustomHTTPErrorHandler handles all errors returned by handlers and middleware.
// It maps sentinel errors to appropriate HTTP status codes, sanitizes internal
// errors, and logs errors with request context.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	// Check for Echo HTTP errors first
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		// Map sentinel errors to HTTP status codes
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = http.StatusNotFound
			message = "Shared link not found"
		case errors.Is(err, apperrors.ErrPathNotFound):
			code = http.StatusNotFound
			message = "Path not found"
		case errors.Is(err, apperrors.ErrUnauthorized):
			code = http.StatusUnauthorized
			message = "Unauthorized"
		case errors.Is(err, apperrors.ErrEmailNotVerified):
			code = http.StatusForbidden
			message = "Email not verified"
		case errors.Is(err, apperrors.ErrForbidden):
			code = http.StatusForbidden
			message = "Forbidden"
		case errors.Is(err, apperrors.ErrMalformedPath):
			code = http.StatusBadRequest
			message = "Malformed path"
		case errors.Is(err, apperrors.ErrSettings):
			code = http.StatusBadRequest
			message = "Invalid link settings"
		case errors.Is(err, apperrors.ErrTooManyUsers):
			code = http.StatusBadRequest
			message = "Too many users in batch"
		case errors.Is(err, apperrors.ErrBadRequest):
			code = http.StatusBadRequest
			message = "Bad request"
		case errors.Is(err, apperrors.ErrValidation):
			code = http.StatusBadRequest
			message = "Validation error"
		case errors.Is(err, apperrors.ErrCursorReset):
			code = http.StatusConflict
			message = "Cursor is no longer valid, restart enumeration"
		case errors.Is(err, apperrors.ErrUnsupportedType):
			code = http.StatusConflict
			message = "Unsupported link type"
		case errors.Is(err, apperrors.ErrConflict):
			code = http.StatusConflict
			message = "Shared link already exists"
		case errors.Is(err, apperrors.ErrExpired):
			code = http.StatusGone
			message = "Shared link expired"
		}

		// Check for custom AppError type
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			// Use the message from AppError if it's a client error
			if code < 500 {
				message = appErr.Message
			}
		}
	}

	// Log error with request context
	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	if code >= 500 {
		c.Logger().Error("internal_server_error",
			"request_id", requestID,
			"status", code,
			"error", err.Error())
		// Don't expose internal errors to clients
		message = "Internal server error"
	} else {
		c.Logger().Warn("client_error",
			"request_id", requestID,
			"status", code,
			"error", err.Error())
	}

	if err := c.JSON(code, map[string]interface{}{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
