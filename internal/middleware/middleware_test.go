package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucolog/pkg/jwt"
)

func newWhoAmIApp(handler func(jwt.JWTService) fiber.Handler, tokens jwt.JWTService) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", handler(tokens), func(c *fiber.Ctx) error {
		id := CurrentUser(c)
		if id == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(id.String())
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tokens := jwt.NewJWTService("secret", time.Hour)
	app := newWhoAmIApp(NewMiddleware("").OptionalAuthMiddleware, tokens)
	id := uuid.New()
	token, err := tokens.GenerateTokenUser(id.String())
	require.NoError(t, err)

	status, body := get(t, app, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = get(t, app, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id.String(), body)

	status, _ = get(t, app, "tampered")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewJWTService("secret", time.Hour)
	app := newWhoAmIApp(NewMiddleware("").AuthMiddleware, tokens)

	status, _ := get(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := tokens.GenerateTokenUser("not-a-uuid")
	require.NoError(t, err)
	status, _ = get(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}
