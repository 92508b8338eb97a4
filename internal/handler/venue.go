package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/repository"
)

// VenueHandler serves venue CRUD for the office and the availability
// search used before booking. Role enforcement happens in middleware;
// these methods assume an authorized caller where it matters.
type VenueHandler struct {
	VenueRepo   *repository.VenueRepo
	BookingRepo *repository.BookingRepo
}

// NewVenueHandler constructs a VenueHandler. Both repositories are
// required.
func NewVenueHandler(venueRepo *repository.VenueRepo, bookingRepo *repository.BookingRepo) *VenueHandler {
	if venueRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewVenueHandler")
	}
	return &VenueHandler{VenueRepo: venueRepo, BookingRepo: bookingRepo}
}

// venueReq is the create/update request body. IsActive is a pointer so
// an omitted flag defaults to active rather than to false.
type venueReq struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	IsActive *bool  `json:"isActive"`
}

func (req venueReq) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if !model.ValidVenueType(req.Type) {
		return "unknown venue type"
	}
	if req.Capacity <= 0 {
		return "capacity must be positive"
	}
	return ""
}

// ListVenues handles GET /v1/venues. Returns all active venues.
func (h *VenueHandler) ListVenues(c echo.Context) error {
	venues, err := h.VenueRepo.ListActive(c.Request().Context(), "", 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venues"})
	}
	return c.JSON(http.StatusOK, venues)
}

// VenueCount handles GET /v1/venues/count, a small stats endpoint for
// the dashboard.
func (h *VenueHandler) VenueCount(c echo.Context) error {
	n, err := h.VenueRepo.CountActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count venues"})
	}
	return c.JSON(http.StatusOK, echo.Map{"totalVenues": n})
}

// CreateVenue handles POST /v1/venues (office/admin). A venue created
// without an explicit isActive flag starts active.
func (h *VenueHandler) CreateVenue(c echo.Context) error {
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	v, err := h.VenueRepo.Create(c.Request().Context(), model.Venue{
		Name:     req.Name,
		Type:     req.Type,
		Capacity: req.Capacity,
		Location: req.Location,
		IsActive: active,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create venue"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "venue '" + v.Name + "' added successfully",
		"venue":   v,
	})
}

// UpdateVenue handles PUT /v1/venues/:id (office/admin). Overwrites
// name, type, capacity, location and the active flag.
func (h *VenueHandler) UpdateVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	v := model.Venue{
		ID:       id,
		Name:     req.Name,
		Type:     req.Type,
		Capacity: req.Capacity,
		Location: req.Location,
		IsActive: active,
	}
	if err := h.VenueRepo.Update(c.Request().Context(), v); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "venue updated successfully", "venue": v})
}

// DeactivateVenue handles DELETE /v1/venues/:id (office/admin). Soft
// delete: the venue stops appearing in listings and cannot take new
// bookings, but existing bookings keep their reference.
func (h *VenueHandler) DeactivateVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	if err := h.VenueRepo.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "venue deactivated successfully"})
}

// SearchAvailable handles GET /v1/venues/available. It returns active
// venues, optionally narrowed by type and minimum capacity, that have
// no confirmed booking overlapping the requested window. Students are
// rejected by middleware before reaching here.
func (h *VenueHandler) SearchAvailable(c echo.Context) error {
	date := c.QueryParam("date")
	start := c.QueryParam("startTime")
	end := c.QueryParam("endTime")
	if _, err := model.ParseDate(date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	if _, err := model.ParseTimeOfDay(start); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startTime, expected HH:MM:SS"})
	}
	if _, err := model.ParseTimeOfDay(end); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endTime, expected HH:MM:SS"})
	}
	if end <= start {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
	}

	venueType := c.QueryParam("type")
	if venueType != "" && !model.ValidVenueType(venueType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown venue type"})
	}
	minCapacity := 0
	if s := c.QueryParam("capacity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid capacity"})
		}
		minCapacity = n
	}

	ctx := c.Request().Context()
	candidates, err := h.VenueRepo.ListActive(ctx, venueType, minCapacity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venues"})
	}
	available := []model.Venue{}
	for _, v := range candidates {
		conflicts, err := h.BookingRepo.FindConflicting(ctx, v.ID, date, start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
		}
		if len(conflicts) == 0 {
			available = append(available, v)
		}
	}
	return c.JSON(http.StatusOK, available)
}
