package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/infonest/campus-backend/internal/model"
)

// bookingColumns is the scan order shared by every query in this file.
const bookingColumns = `id, venue_id, booked_by_email, booked_by_name, booking_date,
	start_time, end_time, purpose, event_name, booking_type, status, created_at`

// BookingRepo provides data access to the venue_bookings table. Dates
// and times of day are stored as DATE and TIME columns and travel
// through this layer as strings in model.DateLayout / model.TimeLayout;
// MySQL compares them directly against string parameters.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning the venue lock and the booking insert.
func (r *BookingRepo) DB() *sql.DB { return r.db }

func scanBooking(row interface{ Scan(...interface{}) error }) (model.Booking, error) {
	var (
		b     model.Booking
		event sql.NullString
	)
	err := row.Scan(&b.ID, &b.VenueID, &b.BookedByEmail, &b.BookedByName, &b.BookingDate,
		&b.StartTime, &b.EndTime, &b.Purpose, &event, &b.BookingType, &b.Status, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if event.Valid {
		b.EventName = event.String
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// conflictQuery selects confirmed bookings for one venue and date whose
// half-open window overlaps [start, end): existing.start < end AND
// existing.end > start. Cancelled rows never participate.
const conflictQuery = `SELECT ` + bookingColumns + `
	FROM venue_bookings
	WHERE venue_id = ? AND booking_date = ? AND status = 'CONFIRMED'
	  AND start_time < ? AND end_time > ?`

// FindConflicting returns every confirmed booking on the venue and date
// that overlaps the window [start, end). It is a pure read used by the
// availability search; booking creation uses FindConflictingTx so the
// check shares the transaction with the insert.
func (r *BookingRepo) FindConflicting(ctx context.Context, venueID uint64, date, start, end string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, conflictQuery, venueID, date, end, start)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// FindConflictingTx is FindConflicting inside an existing transaction.
func (r *BookingRepo) FindConflictingTx(ctx context.Context, tx *sql.Tx, venueID uint64, date, start, end string) ([]model.Booking, error) {
	rows, err := tx.QueryContext(ctx, conflictQuery, venueID, date, end, start)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// CreateTx inserts a confirmed booking within the provided transaction
// and fills in the assigned id. The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	var event interface{}
	if b.EventName != "" {
		event = b.EventName
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO venue_bookings
			(venue_id, booked_by_email, booked_by_name, booking_date, start_time, end_time,
			 purpose, event_name, booking_type, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.VenueID, b.BookedByEmail, b.BookedByName, b.BookingDate, b.StartTime, b.EndTime,
		b.Purpose, event, b.BookingType, b.Status, b.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches one booking. Returns ErrBookingNotFound for an
// unknown id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// ListByEmail returns the caller's non-cancelled bookings ordered by
// creation time, newest first. Expiry filtering happens in the handler
// because "now" is a request-time concern.
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+`
		 FROM venue_bookings
		 WHERE booked_by_email = ? AND status <> 'CANCELLED'
		 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Delete removes a booking permanently. Returns ErrBookingNotFound
// when no row was deleted.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM venue_bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListExpired returns confirmed bookings whose window has fully elapsed
// at the given instant: booking_date before today, or today with
// end_time already passed. The sweeper deletes these one by one so a
// single bad row cannot abort the whole sweep.
func (r *BookingRepo) ListExpired(ctx context.Context, now time.Time) ([]model.Booking, error) {
	today := now.Format(model.DateLayout)
	clock := now.Format(model.TimeLayout)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+`
		 FROM venue_bookings
		 WHERE status = 'CONFIRMED'
		   AND (booking_date < ? OR (booking_date = ? AND end_time < ?))`,
		today, today, clock)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}
