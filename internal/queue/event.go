// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the booking
// notification log.
package queue

// Queue names. Durable; declared idempotently by both ends.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a venue booking is created.
// It carries enough for downstream consumers to notify or log without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	VenueID       uint64 `json:"venue_id"`
	VenueName     string `json:"venue_name"`
	BookedByEmail string `json:"booked_by_email"`
	BookedByName  string `json:"booked_by_name"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Purpose       string `json:"purpose"`
	BookingType   string `json:"booking_type"`
	EventName     string `json:"event_name,omitempty"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled by its
// owner or an admin. Sweeper deletions are not announced; they only
// retire windows that have already passed.
type BookingCancelledEvent struct {
	BookingID     uint64 `json:"booking_id"`
	VenueID       uint64 `json:"venue_id"`
	BookedByEmail string `json:"booked_by_email"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CancelledBy   string `json:"cancelled_by"`
	CancelledAt   string `json:"cancelled_at"`
}
