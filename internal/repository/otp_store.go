package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingSignup is a signup request parked in Redis until the emailed
// OTP is verified. Nothing touches the users table before then.
type PendingSignup struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	ClubID    *string `json:"club_id,omitempty"`
	OTP       string  `json:"otp"`
}

// ErrOTPNotFound is returned when no pending signup exists for the
// email, either because none was started or because the TTL lapsed.
var ErrOTPNotFound = errors.New("otp not found or expired")

// OTPStore keeps pending signups in Redis under a per-email key with a
// TTL, so abandoned signups evaporate on their own instead of piling up
// in an unbounded in-process map.
type OTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOTPStore returns an OTPStore writing entries with the given TTL.
func NewOTPStore(rdb *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: ttl}
}

func otpKey(email string) string { return "signup:pending:" + email }

// Put stores (or refreshes) the pending signup for its email.
func (s *OTPStore) Put(ctx context.Context, p PendingSignup) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, otpKey(p.Email), body, s.ttl).Err()
}

// Get loads the pending signup for an email. Returns ErrOTPNotFound
// when the key is absent or expired.
func (s *OTPStore) Get(ctx context.Context, email string) (PendingSignup, error) {
	body, err := s.rdb.Get(ctx, otpKey(email)).Bytes()
	if err == redis.Nil {
		return PendingSignup{}, ErrOTPNotFound
	}
	if err != nil {
		return PendingSignup{}, err
	}
	var p PendingSignup
	if err := json.Unmarshal(body, &p); err != nil {
		return PendingSignup{}, err
	}
	return p, nil
}

// Delete clears the pending signup once the account has been created.
func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, otpKey(email)).Err()
}
