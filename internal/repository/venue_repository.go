package repository

import (
	"context"
	"database/sql"

	"github.com/infonest/campus-backend/internal/model"
)

// VenueRepo provides data access to the venues table. Venues are soft
// deleted: Deactivate flips is_active instead of removing the row so
// existing bookings keep a valid reference.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a VenueRepo bound to the provided database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span repositories.
func (r *VenueRepo) DB() *sql.DB { return r.db }

// Create inserts a venue and returns it with the assigned id.
func (r *VenueRepo) Create(ctx context.Context, v model.Venue) (model.Venue, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, type, capacity, location, is_active) VALUES (?, ?, ?, ?, ?)`,
		v.Name, v.Type, v.Capacity, v.Location, v.IsActive)
	if err != nil {
		return model.Venue{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Venue{}, err
	}
	v.ID = uint64(id)
	return v, nil
}

// GetByID fetches a single venue regardless of its active flag.
// Returns ErrVenueNotFound when the id is unknown.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, capacity, location, is_active FROM venues WHERE id = ?`,
		id).Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.Location, &v.IsActive)
	if err == sql.ErrNoRows {
		return model.Venue{}, ErrVenueNotFound
	}
	if err != nil {
		return model.Venue{}, err
	}
	return v, nil
}

// GetActiveForUpdateTx loads a venue row inside the given transaction
// with a row lock (SELECT ... FOR UPDATE). Booking creation takes this
// lock first so the conflict check and insert for one venue are
// serialized; concurrent creates for the same venue queue on the lock
// instead of racing past the check. Returns ErrVenueNotFound when the
// venue is missing or inactive.
func (r *VenueRepo) GetActiveForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Venue, error) {
	var v model.Venue
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, type, capacity, location, is_active FROM venues WHERE id = ? FOR UPDATE`,
		id).Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.Location, &v.IsActive)
	if err == sql.ErrNoRows {
		return model.Venue{}, ErrVenueNotFound
	}
	if err != nil {
		return model.Venue{}, err
	}
	if !v.IsActive {
		return model.Venue{}, ErrVenueNotFound
	}
	return v, nil
}

// Update overwrites name, type, capacity, location and the active flag
// of an existing venue. Returns ErrVenueNotFound when the id is
// unknown.
func (r *VenueRepo) Update(ctx context.Context, v model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, type = ?, capacity = ?, location = ?, is_active = ? WHERE id = ?`,
		v.Name, v.Type, v.Capacity, v.Location, v.IsActive, v.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also zero when the update was a no-op on an
		// existing row, so double check existence before reporting 404.
		if _, getErr := r.GetByID(ctx, v.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Deactivate soft deletes a venue. Returns ErrVenueNotFound when the
// id is unknown.
func (r *VenueRepo) Deactivate(ctx context.Context, id uint64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE venues SET is_active = FALSE WHERE id = ?`, id)
	return err
}

// ListActive returns active venues, optionally filtered by type and/or
// a minimum capacity. Pass an empty venueType and minCapacity <= 0 to
// list all active venues. This single method replaces the four finder
// permutations the availability search needs.
func (r *VenueRepo) ListActive(ctx context.Context, venueType string, minCapacity int) ([]model.Venue, error) {
	q := `SELECT id, name, type, capacity, location, is_active FROM venues WHERE is_active = TRUE`
	args := []interface{}{}
	if venueType != "" {
		q += ` AND type = ?`
		args = append(args, venueType)
	}
	if minCapacity > 0 {
		q += ` AND capacity >= ?`
		args = append(args, minCapacity)
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := []model.Venue{}
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.Location, &v.IsActive); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

// CountActive returns the number of active venues. Used by the stats
// endpoint.
func (r *VenueRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM venues WHERE is_active = TRUE`).Scan(&n)
	return n, err
}
