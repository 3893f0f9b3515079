package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/examind-dev/examind-api/internal/middleware"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(role string) *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.JWTProtected(testSecret), middleware.RequireRole(role), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"tenant_id": c.Locals("tenant_id"),
		})
	})
	return app
}

func TestJWTProtectedBindsIdentityTuple(t *testing.T) {
	app := newProtectedApp(middleware.RoleAdmin)

	token := signedToken(t, jwt.MapClaims{
		"sub":       "42",
		"tenant_id": float64(7),
		"role":      "admin",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := newProtectedApp(middleware.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsBadSignature(t *testing.T) {
	app := newProtectedApp(middleware.RoleAdmin)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42", "role": "admin"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := newProtectedApp(middleware.RoleAdmin)

	token := signedToken(t, jwt.MapClaims{
		"sub":  "42",
		"role": "admin",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleRejectsMismatch(t *testing.T) {
	app := newProtectedApp(middleware.RoleAdmin)

	token := signedToken(t, jwt.MapClaims{
		"sub":  "42",
		"role": "candidate",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
