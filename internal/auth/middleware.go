package auth

import (
	"net/http"
	"strings"

	"sharelink-service/internal/sharing"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtService *JWTService
}

func NewMiddleware(jwtService *JWTService) *Middleware {
	return &Middleware{jwtService: jwtService}
}

// RequireJWT rejects requests without a valid member token.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			c.Set(ContextKeyCaller, callerFromClaims(claims))
			return next(c)
		}
	}
}

// OptionalJWT establishes the caller when a token is present but lets
// anonymous requests through. Shared-link metadata lookups are reachable
// without authentication; the resolved visibility decides access.
func (m *Middleware) OptionalJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token != "" {
				claims, err := m.jwtService.Verify(token)
				if err != nil {
					return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
				}
				c.Set(ContextKeyCaller, callerFromClaims(claims))
			}
			return next(c)
		}
	}
}

// GetCaller returns the authenticated caller, or a zero (anonymous)
// caller when the request carried no token.
func GetCaller(c echo.Context) sharing.Caller {
	if caller, ok := c.Get(ContextKeyCaller).(sharing.Caller); ok {
		return caller
	}
	return sharing.Caller{}
}

func callerFromClaims(claims *MemberClaims) sharing.Caller {
	return sharing.Caller{
		MemberID:      claims.MemberID,
		TeamID:        claims.TeamID,
		EmailVerified: claims.EmailVerified,
		Admin:         claims.Admin,
		Authenticated: true,
	}
}

func extractBearerToken(c echo.Context) string {
	header := c.Request().Header.Get(headerAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", authHeaderParts)
	if len(parts) != authHeaderParts || !strings.EqualFold(parts[0], bearerScheme) {
		return ""
	}
	return parts[1]
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
