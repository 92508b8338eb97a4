package model

import "strings"

// Role is the closed set of privilege tiers known to the application.
// Authorization decisions switch on these constants rather than on raw
// strings from the token, so an unknown role can never slip past a
// permission check.
type Role string

const (
	RoleStudent Role = "STUDENT" // may browse venues and schedules, cannot book
	RoleFaculty Role = "FACULTY" // may search availability and book venues
	RoleOffice  Role = "OFFICE"  // manages venues and timetables
	RoleAdmin   Role = "ADMIN"   // full access, may cancel any booking
)

// AllRoles lists every valid role in privilege order.
var AllRoles = []Role{RoleStudent, RoleFaculty, RoleOffice, RoleAdmin}

// ParseRole normalizes a raw role string (e.g. from a JWT claim) into a
// Role. The second return value reports whether the input named a known
// role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// CanBookVenues reports whether the role may create bookings and search
// venue availability. Students are the lowest tier and may not.
func (r Role) CanBookVenues() bool {
	switch r {
	case RoleFaculty, RoleOffice, RoleAdmin:
		return true
	}
	return false
}

// CanManageVenues reports whether the role may create, update or
// deactivate venues.
func (r Role) CanManageVenues() bool {
	return r == RoleOffice || r == RoleAdmin
}

// CanCancelAnyBooking reports whether the role may cancel bookings it
// does not own. Owners can always cancel their own bookings regardless
// of role.
func (r Role) CanCancelAnyBooking() bool {
	return r == RoleAdmin
}

// CanManageSchedules reports whether the role may import or delete
// timetable entries.
func (r Role) CanManageSchedules() bool {
	return r == RoleOffice || r == RoleAdmin
}
