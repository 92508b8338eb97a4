package handler

import (
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/infonest/campus-backend/internal/middleware"
	"github.com/infonest/campus-backend/internal/model"
)

// newTestContext builds an echo context carrying the identity the JWT
// middleware would have stored, so handlers can be driven directly.
func newTestContext(t *testing.T, method, target, body, email string, role model.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if email != "" {
		c.Set(middleware.ContextEmail, email)
		c.Set(middleware.ContextRole, role)
	}
	return c, rec
}

// newMockDB returns a sqlmock-backed handle that closes with the test.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
