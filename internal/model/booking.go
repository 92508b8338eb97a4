package model

import (
	"time"
)

// Layouts for the calendar date and time-of-day fields. Both formats
// sort lexicographically in chronological order, which the expiry and
// overlap helpers below rely on.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Booking represents one reservation of one venue for a contiguous time
// window on a single date, as stored in the `venue_bookings` table.
// The booker's email and display name are captured at creation time and
// never re-derived, so later account changes do not rewrite history.
//
// Fields:
//
//	ID            – primary key identifier.
//	VenueID       – venue being booked (many bookings per venue).
//	BookedByEmail – identity of the requester.
//	BookedByName  – display name resolved when the booking was made.
//	BookingDate   – calendar date in DateLayout.
//	StartTime     – window start in TimeLayout, inclusive.
//	EndTime       – window end in TimeLayout, exclusive.
//	Purpose       – one of the Purpose constants.
//	EventName     – optional, set for event bookings.
//	BookingType   – BookingClassroom or BookingEvent.
//	Status        – StatusConfirmed; rows are deleted rather than
//	                marked cancelled.
//	CreatedAt     – creation timestamp (UTC).
type Booking struct {
	ID            uint64    `json:"bookingId"`     // venue_bookings.id
	VenueID       uint64    `json:"venueId"`       // venue_bookings.venue_id
	BookedByEmail string    `json:"bookedByEmail"` // venue_bookings.booked_by_email
	BookedByName  string    `json:"bookedByName"`  // venue_bookings.booked_by_name
	BookingDate   string    `json:"bookingDate"`   // venue_bookings.booking_date
	StartTime     string    `json:"startTime"`     // venue_bookings.start_time
	EndTime       string    `json:"endTime"`       // venue_bookings.end_time
	Purpose       string    `json:"purpose"`       // venue_bookings.purpose
	EventName     string    `json:"eventName"`     // venue_bookings.event_name
	BookingType   string    `json:"bookingType"`   // venue_bookings.booking_type
	Status        string    `json:"status"`        // venue_bookings.status
	CreatedAt     time.Time `json:"createdAt"`     // venue_bookings.created_at
}

// Booking status values. StatusCancelled exists in the schema for a
// future soft-cancel; no code path writes it today, cancellation is a
// hard delete.
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Booking type values.
const (
	BookingClassroom = "CLASSROOM"
	BookingEvent     = "EVENT"
)

// Purpose values accepted on a booking request.
const (
	PurposeClass       = "CLASS"
	PurposeWorkshop    = "WORKSHOP"
	PurposeCompetition = "COMPETITION"
	PurposeMeeting     = "MEETING"
	PurposeHackathon   = "HACKATHON"
	PurposeSeminar     = "SEMINAR"
	PurposeConference  = "CONFERENCE"
	PurposeEvent       = "EVENT"
)

var purposes = map[string]bool{
	PurposeClass:       true,
	PurposeWorkshop:    true,
	PurposeCompetition: true,
	PurposeMeeting:     true,
	PurposeHackathon:   true,
	PurposeSeminar:     true,
	PurposeConference:  true,
	PurposeEvent:       true,
}

// ValidPurpose reports whether s names a known booking purpose.
func ValidPurpose(s string) bool { return purposes[s] }

// ValidBookingType reports whether s is CLASSROOM or EVENT.
func ValidBookingType(s string) bool {
	return s == BookingClassroom || s == BookingEvent
}

// ParseDate validates a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseTimeOfDay validates a time of day in TimeLayout.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) on the same date intersect. Inputs must be in
// TimeLayout; adjacent windows (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// Expired reports whether the booking's window has fully elapsed at the
// given instant: its date is past, or it is today and the end time has
// passed. The comparison is lexicographic, which matches chronological
// order for the layouts used.
func (b Booking) Expired(now time.Time) bool {
	today := now.Format(DateLayout)
	if b.BookingDate < today {
		return true
	}
	return b.BookingDate == today && b.EndTime < now.Format(TimeLayout)
}
