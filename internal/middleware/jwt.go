// Package middleware provides shared request processing: JWT
// validation, role enforcement, rate limiting and response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/model"
)

// Context keys under which JWTAuth stores the caller's identity.
const (
	ContextEmail = "email"
	ContextRole  = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the caller's email and role into the request
// context. Tokens carrying a role outside the known set are rejected
// outright, so downstream authorization only ever sees valid
// model.Role values.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			email, _ := claims["email"].(string)
			roleStr, _ := claims["role"].(string)
			role, ok := model.ParseRole(roleStr)
			if email == "" || !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(ContextEmail, email)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

// CallerEmail returns the authenticated email stored by JWTAuth, or
// empty when the request is unauthenticated.
func CallerEmail(c echo.Context) string {
	if v, ok := c.Get(ContextEmail).(string); ok {
		return v
	}
	return ""
}

// CallerRole returns the authenticated role stored by JWTAuth. The
// second value is false when the request is unauthenticated.
func CallerRole(c echo.Context) (model.Role, bool) {
	v, ok := c.Get(ContextRole).(model.Role)
	return v, ok
}
