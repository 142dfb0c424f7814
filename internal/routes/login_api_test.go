package routes

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/security"
)

func TestLoginAccessToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "login@example.com", "correct-horse", false)
	seededLogin := user.LastLogin

	time.Sleep(10 * time.Millisecond)
	resp := env.request(t, fiber.MethodPost, "/api/v1/login/access-token", "", dto.LoginForm{
		Username: "login@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.Token
	decodeJSON(t, resp, &body)
	assert.Equal(t, "bearer", body.TokenType)

	subject, err := security.ParseTokenSubject(body.AccessToken, []byte(env.cfg.JWTSecret))
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), subject)

	reloaded, err := env.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LastLogin.After(seededLogin))
}

// The grant also accepts the classic form encoding used by OAuth2 clients.
func TestLoginAccessToken_FormEncoded(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "form@example.com", "correct-horse", false)

	form := url.Values{}
	form.Set("username", "form@example.com")
	form.Set("password", "correct-horse")
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/login/access-token", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.Token
	decodeJSON(t, resp, &body)
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
}

func TestLoginAccessToken_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "victim@example.com", "correct-horse", false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "victim@example.com", "battery-staple"},
		{"unknown email", "ghost@example.com", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.request(t, fiber.MethodPost, "/api/v1/login/access-token", "", dto.LoginForm{
				Username: tt.username,
				Password: tt.password,
			})
			assertErrorBody(t, resp, fiber.StatusBadRequest, "Incorrect email or password")
		})
	}
}

func TestLoginAccessToken_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dormant@example.com", "correct-horse", false)
	inactive := false
	_, err := env.users.AdminUpdate(user.ID, &dto.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	resp := env.request(t, fiber.MethodPost, "/api/v1/login/access-token", "", dto.LoginForm{
		Username: "dormant@example.com",
		Password: "correct-horse",
	})
	assertErrorBody(t, resp, fiber.StatusBadRequest, "Inactive user")
}

func TestLoginTestToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "probe@example.com", "correct-horse", false)

	resp := env.request(t, fiber.MethodPost, "/api/v1/login/test-token", env.tokenFor(t, user), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.UserPublic
	decodeJSON(t, resp, &body)
	assert.Equal(t, user.ID, body.ID)
	assert.Equal(t, "probe@example.com", body.Email)
}

func TestLoginTestToken_NoCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/v1/login/test-token", "", nil)
	assertErrorBody(t, resp, fiber.StatusUnauthorized, "Not authenticated")
}
