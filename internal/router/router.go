package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/handler"
	"github.com/infonest/campus-backend/internal/middleware"
	"github.com/infonest/campus-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Signup is a two-step flow: signup parks the request and emails an
	// OTP, verify-otp turns it into a real account.
	g.POST("/signup", a.Signup)
	g.POST("/verify-otp", a.VerifyOTP)
	g.POST("/login", a.Login)
	// Refresh rotates the presented refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and does not require a
	// JWT, so an expired session can still be terminated.
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterVenues registers venue management and discovery. Every route
// requires authentication; create/update/deactivate are restricted to
// office and admin accounts, and the availability search is closed to
// students. Extra middleware (e.g. a response cache) applies to the
// read-only listing routes.
func RegisterVenues(e *echo.Echo, v *handler.VenueHandler, jwtSecret string, readMW ...echo.MiddlewareFunc) {
	g := e.Group("/v1/venues")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.GET("", v.ListVenues, readMW...)
	g.GET("/count", v.VenueCount, readMW...)
	g.GET("/available", v.SearchAvailable, middleware.RequireBookingRole())

	admin := g.Group("", middleware.RequireVenueAdmin())
	admin.POST("", v.CreateVenue)
	admin.PUT("/:id", v.UpdateVenue)
	admin.DELETE("/:id", v.DeactivateVenue)
}

// RegisterBookings registers the booking lifecycle routes. Creating a
// booking is closed to students; cancelling enforces ownership inside
// the handler so admins can cancel on behalf of anyone.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", b.CreateBooking, middleware.RequireBookingRole())
	g.GET("/my", b.MyBookings)
	g.DELETE("/:id", b.CancelBooking)
}

// RegisterSchedules registers the timetable routes. Lookups are open to
// any authenticated user; the spreadsheet upload and deletion live
// under /v1/office and are restricted to office and admin accounts.
func RegisterSchedules(e *echo.Echo, s *handler.ScheduleHandler, jwtSecret string) {
	g := e.Group("/v1/schedule")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/search/now", s.SearchNow)
	g.GET("/cabin", s.Cabin)
	g.GET("/search/advanced", s.SearchAdvanced)

	office := e.Group("/v1/office")
	office.Use(middleware.JWTAuth(jwtSecret))
	office.Use(middleware.RequireRole(model.RoleOffice, model.RoleAdmin))
	office.GET("/teachers/search", s.SearchTeachers)
	office.POST("/schedule/upload", s.Upload)
	office.DELETE("/schedule", s.DeleteTeacherSchedule)
}
