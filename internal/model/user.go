package model

import (
	"strings"
	"time"
)

// User represents an account record in the `users` table. Only the
// bcrypt hash of the password is stored. The reset token columns back
// the forgot-password flow and are cleared once a reset completes.
//
// Fields:
//
//	ID           – primary key identifier.
//	FirstName    – given name.
//	LastName     – family name.
//	Email        – unique, stored lower-cased.
//	PasswordHash – bcrypt hash of the password.
//	Role         – privilege tier, one of the Role constants.
//	ClubID       – club a FACULTY member advises (nil otherwise).
//	ResetToken   – active password reset token (nil when none).
//	ResetExpires – expiry of ResetToken (nil when none).
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64     // users.id
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Role         Role       // users.role
	ClubID       *string    // users.club_id (nullable)
	ResetToken   *string    // users.reset_token (nullable)
	ResetExpires *time.Time // users.reset_token_expires_at (nullable)
	CreatedAt    time.Time  // users.created_at
}

// FullName returns "First Last", falling back to the email when both
// name parts are empty. Used when stamping a booker's display name onto
// a new booking.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token never touches the database; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp.
//	RevokedAt – when the token was revoked (nil if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Active reports whether the token may still be exchanged for a new
// access token at the given instant.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
