package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/utils"
)

const userColumns = `id, first_name, last_name, email, password_hash, role,
	club_id, reset_token, reset_token_expires_at, created_at`

// UserRepo provides data access to the users table.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row interface{ Scan(...interface{}) error }) (model.User, error) {
	var (
		u       model.User
		role    string
		clubID  sql.NullString
		token   sql.NullString
		expires sql.NullTime
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role,
		&clubID, &token, &expires, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role, _ = model.ParseRole(role)
	if clubID.Valid {
		u.ClubID = &clubID.String
	}
	if token.Valid {
		u.ResetToken = &token.String
	}
	if expires.Valid {
		t := expires.Time
		u.ResetExpires = &t
	}
	return u, nil
}

// Create hashes the password and inserts a user, returning the new id.
// Returns ErrEmailExists when the email is already registered.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password string, role model.Role, clubID *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, role, club_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		firstName, lastName, email, hash, string(role), clubID)
	if err != nil {
		// 1062 is MySQL's duplicate-key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns
// ErrUserNotFound when no account matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id. Returns ErrUserNotFound when the id is
// unknown.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// DisplayName resolves the display name for an email, falling back to
// the raw email when no account exists. Booking creation stamps this
// onto the row so the name is never re-derived later.
func (r *UserRepo) DisplayName(ctx context.Context, email string) string {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return email
	}
	return u.FullName()
}

// SetResetToken stores a password reset token and its expiry on the
// user row. Returns ErrUserNotFound when the email is unknown.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string, expires time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_token_expires_at = ? WHERE email = ?`,
		token, expires.UTC().Format("2006-01-02 15:04:05"), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetByResetToken fetches the user holding an active reset token.
// Returns ErrUserNotFound when the token is unknown.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = ? LIMIT 1`, token))
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdatePassword replaces the password hash and clears any outstanding
// reset token in the same statement.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL WHERE id = ?`,
		hash, userID)
	return err
}

// SearchTeachers returns users whose name or email contains the query,
// excluding STUDENT and OFFICE accounts. The office uses this to find
// the teacher whose timetable it wants to manage.
func (r *UserRepo) SearchTeachers(ctx context.Context, query string) ([]model.User, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)
		   AND role NOT IN ('STUDENT', 'OFFICE')
		 ORDER BY first_name, last_name`,
		like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
