package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/model"
)

// RequireRole returns a middleware that rejects requests whose
// authenticated role is not in the allowed set with 403 Forbidden. It
// assumes JWTAuth ran earlier on the chain.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CallerRole(c)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireBookingRole rejects the lowest tier: students may not book
// venues or search availability.
func RequireBookingRole() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CallerRole(c)
			if !ok || !role.CanBookVenues() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "students cannot book venues"})
			}
			return next(c)
		}
	}
}

// RequireVenueAdmin restricts venue management to OFFICE and ADMIN.
func RequireVenueAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CallerRole(c)
			if !ok || !role.CanManageVenues() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "only office or admin can manage venues"})
			}
			return next(c)
		}
	}
}
