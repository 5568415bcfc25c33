package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/ports"
)

// subjectKey holds the token subject on the echo context of guarded routes
const subjectKey = "subject"

// authMiddleware rejects /api/tasks requests without a valid bearer token
func (s *Server) authMiddleware(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or malformed bearer token")
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"endpoint": c.Request().URL.Path,
					"error":    err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(subjectKey, claims.Subject)
			return next(c)
		}
	}
}

// subjectOf returns the token subject of an authenticated request, or ""
func subjectOf(c echo.Context) string {
	subject, _ := c.Get(subjectKey).(string)
	return subject
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
