// Package identity resolves the requesting user from whatever credential
// material the deployment trusts: a signed bearer token, headers injected
// by a fronting OAuth2-proxy, or both.
package identity

import (
	"errors"
	"fmt"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/security"
	"github.com/stackpad/backend/internal/services"
)

const userContextKey = "currentUser"

// CurrentUser returns the resolved user for this request, or nil when the
// request is anonymous.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userContextKey).(*models.User)
	return user
}

type Resolver struct {
	cfg   *config.Config
	users *services.UserService
}

func NewResolver(cfg *config.Config, users *services.UserService) *Resolver {
	return &Resolver{cfg: cfg, users: users}
}

type authError struct {
	status  int
	message string
}

func fail(c *fiber.Ctx, e *authError) error {
	return c.Status(e.status).JSON(dto.ErrorResponse{Error: true, Message: e.message})
}

// RequireUser returns the authentication middleware for the configured
// mode. The mode is fixed at startup, so the switch runs once.
func (r *Resolver) RequireUser() fiber.Handler {
	switch r.cfg.AuthMode {
	case config.AuthModeProxyHeader:
		return func(c *fiber.Ctx) error {
			user, authErr := r.resolveProxy(c)
			if authErr != nil {
				return fail(c, authErr)
			}
			c.Locals(userContextKey, user)
			return c.Next()
		}
	case config.AuthModeHybrid:
		bearer := r.bearerMiddleware("No authentication credentials provided")
		return func(c *fiber.Ctx) error {
			if c.Get(r.cfg.ProxyEmailHeader) != "" {
				user, authErr := r.resolveProxy(c)
				if authErr != nil {
					return fail(c, authErr)
				}
				c.Locals(userContextKey, user)
				return c.Next()
			}
			return bearer(c)
		}
	case config.AuthModeForwarded:
		return func(c *fiber.Ctx) error {
			user, authErr := r.resolveForwarded(c)
			if authErr != nil {
				return fail(c, authErr)
			}
			c.Locals(userContextKey, user)
			return c.Next()
		}
	default:
		return r.bearerMiddleware("Not authenticated")
	}
}

// Optional resolves the user when credentials are present but lets the
// request through anonymously when they are absent or invalid.
func (r *Resolver) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user *models.User
		switch r.cfg.AuthMode {
		case config.AuthModeProxyHeader:
			user, _ = r.resolveProxy(c)
		case config.AuthModeHybrid:
			if c.Get(r.cfg.ProxyEmailHeader) != "" {
				user, _ = r.resolveProxy(c)
			} else {
				user, _ = r.resolveBearer(c)
			}
		case config.AuthModeForwarded:
			user, _ = r.resolveForwarded(c)
		default:
			user, _ = r.resolveBearer(c)
		}
		if user != nil {
			c.Locals(userContextKey, user)
		}
		return c.Next()
	}
}

// bearerMiddleware wraps the fiber JWT middleware. Extraction failures
// (no Authorization header, wrong scheme) surface as 401 with the given
// message; a token that extracts but fails validation is 403.
func (r *Resolver) bearerMiddleware(missingMessage string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(r.cfg.JWTSecret)},
		SuccessHandler: r.resolveFromToken,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return fail(c, &authError{fiber.StatusUnauthorized, missingMessage})
			}
			return fail(c, &authError{fiber.StatusForbidden, "Could not validate credentials"})
		},
	})
}

// resolveFromToken runs after the JWT middleware has verified the
// signature; it maps the subject claim onto a stored user.
func (r *Resolver) resolveFromToken(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return fail(c, &authError{fiber.StatusForbidden, "Could not validate credentials"})
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return fail(c, &authError{fiber.StatusForbidden, "Could not validate credentials"})
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return fail(c, &authError{fiber.StatusForbidden, "Could not validate credentials"})
	}

	user, err := r.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fail(c, &authError{fiber.StatusNotFound, "User not found"})
		}
		return fail(c, &authError{fiber.StatusInternalServerError, "Internal server error"})
	}
	if !user.IsActive {
		return fail(c, &authError{fiber.StatusBadRequest, "Inactive user"})
	}

	c.Locals(userContextKey, user)
	return c.Next()
}

// resolveProxy implements the email-keyed header mode: the proxy has
// already authenticated the user, so an unknown email is provisioned on
// the spot and a known one gets its last_login advanced.
func (r *Resolver) resolveProxy(c *fiber.Ctx) (*models.User, *authError) {
	email := c.Get(r.cfg.ProxyEmailHeader)
	if email == "" {
		return nil, &authError{
			fiber.StatusUnauthorized,
			fmt.Sprintf("Missing %s header from OAuth2-proxy", r.cfg.ProxyEmailHeader),
		}
	}

	username := c.Get(r.cfg.ProxyUserHeader)
	if username == "" {
		username = email
	}
	fullName := c.Get(r.cfg.ProxyPreferredUsernameHeader)
	if fullName == "" {
		fullName = username
	}

	user, err := r.users.GetByEmail(email)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		user, err = r.users.CreateFromProxyHeaders(email, username, fullName)
		if err != nil {
			return nil, &authError{fiber.StatusInternalServerError, "Internal server error"}
		}
	case err != nil:
		return nil, &authError{fiber.StatusInternalServerError, "Internal server error"}
	default:
		if err := r.users.TouchLastLogin(user); err != nil {
			return nil, &authError{fiber.StatusInternalServerError, "Internal server error"}
		}
	}

	if !user.IsActive {
		return nil, &authError{fiber.StatusBadRequest, "Inactive user"}
	}
	return user, nil
}

// resolveForwarded implements the username-keyed header mode. The
// preferred-username header wins over the forwarded-user header; email
// only ever comes from the email header. With no headers at all a local
// deployment resolves to a fixed development identity instead of failing.
func (r *Resolver) resolveForwarded(c *fiber.Ctx) (*models.User, *authError) {
	username := c.Get(r.cfg.ProxyPreferredUsernameHeader)
	if username == "" {
		username = c.Get(r.cfg.ProxyUserHeader)
	}
	email := c.Get(r.cfg.ProxyEmailHeader)

	if username == "" && email == "" && r.cfg.IsLocal() {
		username = "devuser"
		email = "devuser@localhost"
	}
	if username == "" {
		return nil, &authError{
			fiber.StatusUnauthorized,
			fmt.Sprintf("Missing %s header from OAuth2-proxy", r.cfg.ProxyUserHeader),
		}
	}
	if email == "" {
		return nil, &authError{
			fiber.StatusUnauthorized,
			fmt.Sprintf("Missing %s header from OAuth2-proxy", r.cfg.ProxyEmailHeader),
		}
	}

	user, _, err := r.users.GetOrCreateByUsername(username, email)
	if err != nil {
		return nil, &authError{fiber.StatusInternalServerError, "Internal server error"}
	}
	if !user.IsActive {
		return nil, &authError{fiber.StatusBadRequest, "Inactive user"}
	}
	return user, nil
}

// resolveBearer parses the Authorization header directly; used on the
// optional path where the JWT middleware's error responses would get in
// the way.
func (r *Resolver) resolveBearer(c *fiber.Ctx) (*models.User, *authError) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, &authError{fiber.StatusUnauthorized, "Not authenticated"}
	}

	subject, err := security.ParseTokenSubject(strings.TrimPrefix(header, "Bearer "), []byte(r.cfg.JWTSecret))
	if err != nil {
		return nil, &authError{fiber.StatusForbidden, "Could not validate credentials"}
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, &authError{fiber.StatusForbidden, "Could not validate credentials"}
	}

	user, err := r.users.GetByID(userID)
	if err != nil {
		return nil, &authError{fiber.StatusNotFound, "User not found"}
	}
	if !user.IsActive {
		return nil, &authError{fiber.StatusBadRequest, "Inactive user"}
	}
	return user, nil
}
