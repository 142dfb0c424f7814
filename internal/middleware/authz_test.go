package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/database"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/security"
	"github.com/stackpad/backend/internal/services"
)

func boolPtr(b bool) *bool { return &b }

func newSuperuserTestApp(t *testing.T) (*fiber.App, *config.Config, *services.UserService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:         "authz-test-secret",
		AccessTokenExpiry: time.Hour,
		AuthMode:          config.AuthModeJWT,
	}
	users := services.NewUserService(db)
	resolver := identity.NewResolver(cfg, users)

	app := fiber.New()
	app.Get("/admin-only", resolver.RequireUser(), RequireSuperuser(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	// Deliberately miswired route: the gate must fail closed when no
	// identity middleware ran before it.
	app.Get("/no-identity", RequireSuperuser(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, cfg, users
}

func getStatus(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body.Message
}

func TestRequireSuperuser(t *testing.T) {
	app, cfg, users := newSuperuserTestApp(t)

	super, err := users.Create(&dto.CreateUserRequest{
		Email:       "root@example.com",
		Password:    "strongpass",
		IsSuperuser: boolPtr(true),
	})
	require.NoError(t, err)
	normal, err := users.Create(&dto.CreateUserRequest{
		Email:    "plain@example.com",
		Password: "strongpass",
	})
	require.NoError(t, err)

	superToken, err := security.CreateAccessToken(super.ID.String(), time.Hour, []byte(cfg.JWTSecret))
	require.NoError(t, err)
	normalToken, err := security.CreateAccessToken(normal.ID.String(), time.Hour, []byte(cfg.JWTSecret))
	require.NoError(t, err)

	status, _ := getStatus(t, app, "/admin-only", superToken)
	assert.Equal(t, fiber.StatusOK, status)

	status, message := getStatus(t, app, "/admin-only", normalToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "The user doesn't have enough privileges", message)

	status, message = getStatus(t, app, "/admin-only", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", message)
}

func TestRequireSuperuser_NoIdentityMiddleware(t *testing.T) {
	app, _, _ := newSuperuserTestApp(t)

	status, message := getStatus(t, app, "/no-identity", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", message)
}
