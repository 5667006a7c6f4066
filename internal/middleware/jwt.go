package middleware // package middleware holds the echo middleware shared by the API routes

import (
	"net/http" // HTTP status codes for responses
	"strings"  // bearer prefix handling

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/review-catalog/internal/utils" // access token verification
)

// UserIDKey is the context key under which JWTAuth stores the token subject.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that requires a Bearer access token
// issued at user registration.  The subject claim (the reviewer's user id) is
// stored in the context under UserIDKey as a string.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			sub, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(UserIDKey, sub) // read back with CurrentUserID
			return next(c)
		}
	}
}

// CurrentUserID returns the authenticated subject or "anon".
func CurrentUserID(c echo.Context) string {
	if s, ok := c.Get(UserIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
