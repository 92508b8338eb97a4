package model

// Venue represents a bookable campus space as stored in the `venues`
// table. Venues are never hard deleted; deactivation flips IsActive so
// existing bookings keep a valid reference.
//
// Fields:
//
//	ID       – primary key identifier.
//	Name     – display name, e.g. "Room 101" or "Main Auditorium".
//	Type     – one of the VenueType constants below.
//	Capacity – maximum seating capacity, always positive.
//	Location – free text, e.g. "Block A, Floor 2".
//	IsActive – soft-delete flag; inactive venues cannot be booked.
type Venue struct {
	ID       uint64 `json:"venueId"`   // venues.id
	Name     string `json:"name"`      // venues.name
	Type     string `json:"type"`      // venues.type
	Capacity int    `json:"capacity"`  // venues.capacity
	Location string `json:"location"`  // venues.location
	IsActive bool   `json:"isActive"`  // venues.is_active
}

// Venue type constants. The set matches the categories the office
// registers spaces under.
const (
	VenueClassroom      = "CLASSROOM"
	VenueAuditorium     = "AUDITORIUM"
	VenueSeminarHall    = "SEMINAR_HALL"
	VenueComputerLab    = "COMPUTER_LAB"
	VenueConferenceRoom = "CONFERENCE_ROOM"
	VenueOutdoor        = "OUTDOOR"
)

var venueTypes = map[string]bool{
	VenueClassroom:      true,
	VenueAuditorium:     true,
	VenueSeminarHall:    true,
	VenueComputerLab:    true,
	VenueConferenceRoom: true,
	VenueOutdoor:        true,
}

// ValidVenueType reports whether s names a known venue category.
func ValidVenueType(s string) bool { return venueTypes[s] }
