package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	handler := JWTAuth(testSecret)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token injects identity", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 5, "f@campus.edu", "FACULTY", 15)
		require.NoError(t, err)

		rec, c := runJWT(t, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "f@campus.edu", CallerEmail(c))
		role, ok := CallerRole(c)
		assert.True(t, ok)
		assert.Equal(t, model.RoleFaculty, role)
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _ := runJWT(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := runJWT(t, "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 5, "f@campus.edu", "FACULTY", 15)
		require.NoError(t, err)
		rec, _ := runJWT(t, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role claim", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 5, "f@campus.edu", "OWNER", 15)
		require.NoError(t, err)
		rec, _ := runJWT(t, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
