package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func callWithAuth(t *testing.T, authz string) (*httptest.ResponseRecorder, int64, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID int64
	var gotRole string
	h := AuthJWT(config.Config{JWTSecret: testSecret})(func(c echo.Context) error {
		gotUserID, _ = c.Get(CtxUserIDKey).(int64)
		gotRole, _ = c.Get(CtxUserRoleKey).(string)
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, h(c))
	return rec, gotUserID, gotRole
}

func TestAuthJWT_ValidToken(t *testing.T) {
	now := time.Now()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(42),
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	})

	rec, userID, role := callWithAuth(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "USER", role)
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, _ := callWithAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, _, _ := callWithAuth(t, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "another-secret", jwt.MapClaims{
		"sub":  float64(42),
		"role": "USER",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	rec, _, _ := callWithAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(42),
		"role": "USER",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})

	rec, _, _ := callWithAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRole(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	rec, _, _ := callWithAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
