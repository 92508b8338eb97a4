package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/middleware"
	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/queue"
	"github.com/infonest/campus-backend/internal/repository"
	queue_publisher "github.com/infonest/campus-backend/internal/service"
)

// BookingHandler serves the booking lifecycle: create, list-mine and
// cancel. Creation runs its conflict check and insert in a single
// transaction holding a row lock on the venue, so two requests racing
// for the same venue queue behind each other instead of both passing
// the check.
type BookingHandler struct {
	VenueRepo   *repository.VenueRepo
	BookingRepo *repository.BookingRepo
	UserRepo    *repository.UserRepo

	// Event publishers, overridable in tests. Failures are logged by
	// the publisher and never fail the request.
	publishConfirmed func(ctx context.Context, ev queue.BookingConfirmedEvent) error
	publishCancelled func(ctx context.Context, ev queue.BookingCancelledEvent) error

	now func() time.Time
}

// NewBookingHandler constructs a BookingHandler wired to the RabbitMQ
// publisher. All repositories are required.
func NewBookingHandler(venueRepo *repository.VenueRepo, bookingRepo *repository.BookingRepo, userRepo *repository.UserRepo) *BookingHandler {
	if venueRepo == nil || bookingRepo == nil || userRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{
		VenueRepo:        venueRepo,
		BookingRepo:      bookingRepo,
		UserRepo:         userRepo,
		publishConfirmed: queue_publisher.PublishBookingConfirmed,
		publishCancelled: queue_publisher.PublishBookingCancelled,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

type createBookingReq struct {
	VenueID     uint64 `json:"venueId"`
	BookingDate string `json:"bookingDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Purpose     string `json:"purpose"`
	BookingType string `json:"bookingType"`
	EventName   string `json:"eventName"`
}

func (req createBookingReq) validate() string {
	if req.VenueID == 0 {
		return "venueId is required"
	}
	if _, err := model.ParseDate(req.BookingDate); err != nil {
		return "invalid bookingDate, expected YYYY-MM-DD"
	}
	if _, err := model.ParseTimeOfDay(req.StartTime); err != nil {
		return "invalid startTime, expected HH:MM:SS"
	}
	if _, err := model.ParseTimeOfDay(req.EndTime); err != nil {
		return "invalid endTime, expected HH:MM:SS"
	}
	if req.EndTime <= req.StartTime {
		return "end time must be after start time"
	}
	if !model.ValidPurpose(req.Purpose) {
		return "unknown purpose"
	}
	if !model.ValidBookingType(req.BookingType) {
		return "bookingType must be CLASSROOM or EVENT"
	}
	return ""
}

// CreateBooking handles POST /v1/bookings. Middleware has already
// rejected students. Failure modes, in order: 400 validation, 404
// unknown or inactive venue, 409 overlapping confirmed booking.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	email := middleware.CallerEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the venue row first: every create for this venue serializes
	// here, closing the gap between the conflict check and the insert.
	venue, err := h.VenueRepo.GetActiveForUpdateTx(ctx, tx, req.VenueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found or inactive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venue"})
	}

	conflicts, err := h.BookingRepo.FindConflictingTx(ctx, tx, req.VenueID, req.BookingDate, req.StartTime, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check conflicts"})
	}
	if len(conflicts) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "venue is already booked for the selected time slot"})
	}

	booking := model.Booking{
		VenueID:       venue.ID,
		BookedByEmail: email,
		BookedByName:  h.UserRepo.DisplayName(ctx, email),
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Purpose:       req.Purpose,
		EventName:     req.EventName,
		BookingType:   req.BookingType,
		Status:        model.StatusConfirmed,
		CreatedAt:     h.now(),
	}
	if err := h.BookingRepo.CreateTx(ctx, tx, &booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if h.publishConfirmed != nil {
		_ = h.publishConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:     booking.ID,
			VenueID:       venue.ID,
			VenueName:     venue.Name,
			BookedByEmail: booking.BookedByEmail,
			BookedByName:  booking.BookedByName,
			BookingDate:   booking.BookingDate,
			StartTime:     booking.StartTime,
			EndTime:       booking.EndTime,
			Purpose:       booking.Purpose,
			BookingType:   booking.BookingType,
			EventName:     booking.EventName,
			ConfirmedAt:   booking.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": venue.Name + " booked successfully",
		"booking": booking,
	})
}

// MyBookings handles GET /v1/bookings/my. Returns the caller's
// bookings newest first, with windows that have already fully elapsed
// filtered out even if the sweeper has not removed them yet.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	email := middleware.CallerEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.BookingRepo.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	now := h.now()
	active := []model.Booking{}
	for _, b := range bookings {
		if !b.Expired(now) {
			active = append(active, b)
		}
	}
	return c.JSON(http.StatusOK, active)
}

// CancelBooking handles DELETE /v1/bookings/:id. Only the original
// booker or an admin may cancel. Cancellation is a hard delete, so an
// identical window can be booked again immediately.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	email := middleware.CallerEmail(c)
	role, _ := middleware.CallerRole(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	booking, err := h.BookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if booking.BookedByEmail != email && !role.CanCancelAnyBooking() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only cancel your own bookings"})
	}
	if err := h.BookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			// Already gone, e.g. swept between load and delete.
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}

	if h.publishCancelled != nil {
		_ = h.publishCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:     booking.ID,
			VenueID:       booking.VenueID,
			BookedByEmail: booking.BookedByEmail,
			BookingDate:   booking.BookingDate,
			StartTime:     booking.StartTime,
			EndTime:       booking.EndTime,
			CancelledBy:   email,
			CancelledAt:   h.now().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled and removed successfully"})
}
