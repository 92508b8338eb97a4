package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/queue"
	"github.com/infonest/campus-backend/internal/repository"
)

var bookingCols = []string{
	"id", "venue_id", "booked_by_email", "booked_by_name", "booking_date",
	"start_time", "end_time", "purpose", "event_name", "booking_type", "status", "created_at",
}

var userCols = []string{
	"id", "first_name", "last_name", "email", "password_hash", "role",
	"club_id", "reset_token", "reset_token_expires_at", "created_at",
}

var venueCols = []string{"id", "name", "type", "capacity", "location", "is_active"}

func newBookingTestHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(
		repository.NewVenueRepo(db),
		repository.NewBookingRepo(db),
		repository.NewUserRepo(db),
	)
	// Requests must never block on a broker in tests.
	h.publishConfirmed = nil
	h.publishCancelled = nil
	return h, mock
}

func TestCreateBookingValidation(t *testing.T) {
	h, _ := newBookingTestHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing venue", `{"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`},
		{"bad date", `{"venueId":1,"bookingDate":"10/03/2026","startTime":"10:00:00","endTime":"11:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`},
		{"bad start", `{"venueId":1,"bookingDate":"2026-03-10","startTime":"10am","endTime":"11:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`},
		{"end before start", `{"venueId":1,"bookingDate":"2026-03-10","startTime":"11:00:00","endTime":"10:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`},
		{"end equals start", `{"venueId":1,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"10:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`},
		{"unknown purpose", `{"venueId":1,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"PARTY","bookingType":"CLASSROOM"}`},
		{"bad type", `{"venueId":1,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"MEETING","bookingType":"HALLWAY"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodPost, "/v1/bookings", tc.body, "f@campus.edu", model.RoleFaculty)
			require.NoError(t, h.CreateBooking(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	var published *queue.BookingConfirmedEvent
	h.publishConfirmed = func(_ context.Context, ev queue.BookingConfirmedEvent) error {
		published = &ev
		return nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(venueCols).
			AddRow(7, "Seminar Hall B", model.VenueSeminarHall, 80, "Block C", true))
	mock.ExpectQuery(`start_time < \? AND end_time > \?`).
		WithArgs(uint64(7), "2026-03-10", "11:00:00", "10:00:00").
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("f@campus.edu").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(5, "Fatima", "Khan", "f@campus.edu", "x", "FACULTY", "CLUB-9", nil, nil, time.Now()))
	mock.ExpectExec(`INSERT INTO venue_bookings`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	body := `{"venueId":7,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"SEMINAR","bookingType":"EVENT","eventName":"Guest Talk"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/bookings", body, "f@campus.edu", model.RoleFaculty)
	require.NoError(t, h.CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string        `json:"message"`
		Booking model.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.Booking.ID)
	assert.Equal(t, "Fatima Khan", resp.Booking.BookedByName)
	assert.Contains(t, resp.Message, "Seminar Hall B")

	require.NotNil(t, published)
	assert.Equal(t, uint64(42), published.BookingID)
	assert.Equal(t, "Seminar Hall B", published.VenueName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingConflict(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	h.publishConfirmed = func(context.Context, queue.BookingConfirmedEvent) error {
		t.Fatal("no event may be published for a rejected booking")
		return nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(venueCols).
			AddRow(7, "Seminar Hall B", model.VenueSeminarHall, 80, "Block C", true))
	mock.ExpectQuery(`start_time < \? AND end_time > \?`).
		WithArgs(uint64(7), "2026-03-10", "11:00:00", "10:00:00").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 7, "other@campus.edu", "Other", "2026-03-10",
				"10:30:00", "11:30:00", model.PurposeMeeting, nil,
				model.BookingClassroom, model.StatusConfirmed, time.Now()))
	mock.ExpectRollback()

	body := `{"venueId":7,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/bookings", body, "f@campus.edu", model.RoleFaculty)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingVenueNotFound(t *testing.T) {
	h, mock := newBookingTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(venueCols))
	mock.ExpectRollback()

	body := `{"venueId":99,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"MEETING","bookingType":"CLASSROOM"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/bookings", body, "f@campus.edu", model.RoleFaculty)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInactiveVenue(t *testing.T) {
	h, mock := newBookingTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(venueCols).
			AddRow(4, "Old Lab", model.VenueComputerLab, 30, "Block A", false))
	mock.ExpectRollback()

	body := `{"venueId":4,"bookingDate":"2026-03-10","startTime":"10:00:00","endTime":"11:00:00","purpose":"CLASS","bookingType":"CLASSROOM"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/bookings", body, "f@campus.edu", model.RoleFaculty)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyBookingsFiltersExpired(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	h.now = func() time.Time { return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) }

	mock.ExpectQuery(`WHERE booked_by_email = \?`).
		WithArgs("f@campus.edu").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(1, 7, "f@campus.edu", "F", "2026-03-11",
				"10:00:00", "11:00:00", model.PurposeClass, nil,
				model.BookingClassroom, model.StatusConfirmed, time.Now()).
			AddRow(2, 7, "f@campus.edu", "F", "2026-03-09",
				"10:00:00", "11:00:00", model.PurposeClass, nil,
				model.BookingClassroom, model.StatusConfirmed, time.Now()))

	c, rec := newTestContext(t, http.MethodGet, "/v1/bookings/my", "", "f@campus.edu", model.RoleFaculty)
	require.NoError(t, h.MyBookings(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking(t *testing.T) {
	bookingRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingCols).
			AddRow(5, 7, "owner@campus.edu", "Owner", "2026-03-10",
				"10:00:00", "11:00:00", model.PurposeMeeting, nil,
				model.BookingClassroom, model.StatusConfirmed, time.Now())
	}

	t.Run("owner cancels own booking", func(t *testing.T) {
		h, mock := newBookingTestHandler(t)
		var cancelled *queue.BookingCancelledEvent
		h.publishCancelled = func(_ context.Context, ev queue.BookingCancelledEvent) error {
			cancelled = &ev
			return nil
		}

		mock.ExpectQuery(`FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(5)).WillReturnRows(bookingRow())
		mock.ExpectExec(`DELETE FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := newTestContext(t, http.MethodDelete, "/", "", "owner@campus.edu", model.RoleFaculty)
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.CancelBooking(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, cancelled)
		assert.Equal(t, "owner@campus.edu", cancelled.CancelledBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		h, mock := newBookingTestHandler(t)
		mock.ExpectQuery(`FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(5)).WillReturnRows(bookingRow())

		c, rec := newTestContext(t, http.MethodDelete, "/", "", "stranger@campus.edu", model.RoleFaculty)
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.CancelBooking(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin cancels any booking", func(t *testing.T) {
		h, mock := newBookingTestHandler(t)
		mock.ExpectQuery(`FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(5)).WillReturnRows(bookingRow())
		mock.ExpectExec(`DELETE FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := newTestContext(t, http.MethodDelete, "/", "", "admin@campus.edu", model.RoleAdmin)
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.CancelBooking(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown booking", func(t *testing.T) {
		h, mock := newBookingTestHandler(t)
		mock.ExpectQuery(`FROM venue_bookings WHERE id = \?`).
			WithArgs(uint64(999)).WillReturnRows(sqlmock.NewRows(bookingCols))

		c, rec := newTestContext(t, http.MethodDelete, "/", "", "owner@campus.edu", model.RoleFaculty)
		c.SetParamNames("id")
		c.SetParamValues("999")
		require.NoError(t, h.CancelBooking(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
