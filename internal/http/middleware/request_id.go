package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDContextKey = "request_id"

// RequestID tags each request with an id, honoring one supplied by the
// caller so retries stay correlatable. The id is echoed in the response
// and stored in context for the error handler's logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(requestIDContextKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the id RequestID stored, or "" outside its scope.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(requestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}
