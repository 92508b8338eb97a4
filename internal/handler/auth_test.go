package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infonest/campus-backend/internal/config"
	"github.com/infonest/campus-backend/internal/mailer"
	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/repository"
	"github.com/infonest/campus-backend/internal/utils"
)

func testAuthConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // bcrypt.MinCost, keeps the suite fast
		OTPTTL:         10 * time.Minute,
		ResetTokenTTL:  15 * time.Minute,
		ResetLinkBase:  "http://localhost:3000/reset-password",
	}
}

// newAuthTestHandler wires an AuthHandler against sqlmock, a log-only
// mailer and no OTP store.
func newAuthTestHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testAuthConfig(),
		repository.NewUserRepo(db), repository.NewTokenRepo(db), nil, mailer.NewFromEnv())
	return h, mock
}

func userRowWithHash(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return sqlmock.NewRows(userCols).
		AddRow(5, "Fatima", "Khan", "f@campus.edu", hash, "FACULTY", nil, nil, nil, time.Now())
}

func TestSignupValidation(t *testing.T) {
	h, _ := newAuthTestHandler(t)

	t.Run("faculty without clubId", func(t *testing.T) {
		body := `{"firstName":"F","lastName":"K","email":"f@campus.edu","password":"pw","role":"FACULTY"}`
		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/signup", body, "", "")
		require.NoError(t, h.Signup(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/signup", `{"password":"pw"}`, "", "")
		require.NoError(t, h.Signup(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no verification store", func(t *testing.T) {
		body := `{"firstName":"S","lastName":"T","email":"s@campus.edu","password":"pw","role":"STUDENT"}`
		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/signup", body, "", "")
		require.NoError(t, h.Signup(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success issues token pair", func(t *testing.T) {
		h, mock := newAuthTestHandler(t)
		mock.ExpectQuery(`FROM users WHERE email = \?`).
			WithArgs("f@campus.edu").
			WillReturnRows(userRowWithHash(t, "pw"))
		mock.ExpectExec(`INSERT INTO refresh_tokens`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"F@Campus.edu","password":"pw"}`, "", "")
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "f@campus.edu", resp.User.Email)
		assert.Equal(t, model.RoleFaculty, resp.User.Role)
		assert.NotEmpty(t, resp.Access.Token)
		assert.NotEmpty(t, resp.Refresh.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		h, mock := newAuthTestHandler(t)
		mock.ExpectQuery(`FROM users WHERE email = \?`).
			WithArgs("f@campus.edu").
			WillReturnRows(userRowWithHash(t, "pw"))

		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"f@campus.edu","password":"wrong"}`, "", "")
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account", func(t *testing.T) {
		h, mock := newAuthTestHandler(t)
		mock.ExpectQuery(`FROM users WHERE email = \?`).
			WithArgs("nobody@campus.edu").
			WillReturnRows(sqlmock.NewRows(userCols))

		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"nobody@campus.edu","password":"pw"}`, "", "")
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	h, mock := newAuthTestHandler(t)
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at"}))

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"bogus"}`, "", "")
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	h, mock := newAuthTestHandler(t)
	mock.ExpectExec(`UPDATE users SET reset_token = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"nobody@campus.edu"}`, "", "")
	require.NoError(t, h.ForgotPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		h, mock := newAuthTestHandler(t)
		expired := time.Now().UTC().Add(-time.Hour)
		mock.ExpectQuery(`FROM users WHERE reset_token = \?`).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(5, "Fatima", "Khan", "f@campus.edu", "x", "FACULTY", nil, "tok-1", expired, time.Now()))

		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/reset-password",
			`{"token":"tok-1","newPassword":"newpw"}`, "", "")
		require.NoError(t, h.ResetPassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("valid token updates password and revokes sessions", func(t *testing.T) {
		h, mock := newAuthTestHandler(t)
		valid := time.Now().UTC().Add(10 * time.Minute)
		mock.ExpectQuery(`FROM users WHERE reset_token = \?`).
			WithArgs("tok-2").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(5, "Fatima", "Khan", "f@campus.edu", "x", "FACULTY", nil, "tok-2", valid, time.Now()))
		mock.ExpectExec(`UPDATE users SET password_hash = \?, reset_token = NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP\(\) WHERE user_id = \?`).
			WithArgs(uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		c, rec := newTestContext(t, http.MethodPost, "/v1/auth/reset-password",
			`{"token":"tok-2","newPassword":"newpw"}`, "", "")
		require.NoError(t, h.ResetPassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
