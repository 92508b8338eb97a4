// Package sweeper retires venue bookings whose time window has fully
// elapsed. It is the only writer besides the booking handlers and
// coordinates with them solely through the database.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/repository"
)

// store is the slice of BookingRepo the sweeper needs. Narrowed to an
// interface so tests can drive sweeps without a database.
type store interface {
	ListExpired(ctx context.Context, now time.Time) ([]model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

// Sweeper periodically deletes confirmed bookings whose date is past,
// or whose date is today with the end time already behind the clock.
type Sweeper struct {
	bookings store
	interval time.Duration
	now      func() time.Time
}

// New returns a Sweeper running every interval.
func New(bookings store, interval time.Duration) *Sweeper {
	return &Sweeper{bookings: bookings, interval: interval, now: func() time.Time { return time.Now().UTC() }}
}

// Run blocks, sweeping once per tick until ctx is cancelled. A single
// goroutine drains the ticker, so runs never overlap: a sweep that
// outlasts the interval simply delays the next one.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("sweeper: running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: list expired confirmed bookings, delete each
// one. A failed delete is logged and skipped so a transient storage
// error on one row cannot abort the rest of the batch; the row is
// picked up again on the next pass. Returns how many rows were
// removed. Running Sweep twice in a row is idempotent: the second pass
// finds nothing left to delete.
func (s *Sweeper) Sweep(ctx context.Context) int {
	now := s.now()
	expired, err := s.bookings.ListExpired(ctx, now)
	if err != nil {
		log.Printf("sweeper: list expired bookings: %v", err)
		return 0
	}
	deleted := 0
	for _, b := range expired {
		if err := s.bookings.Delete(ctx, b.ID); err != nil {
			log.Printf("sweeper: delete booking %d: %v", b.ID, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Printf("sweeper: removed %d expired booking(s)", deleted)
	}
	return deleted
}

var _ store = (*repository.BookingRepo)(nil)
