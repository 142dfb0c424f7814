package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/security"
	"github.com/stackpad/backend/internal/services"
)

type LoginHandler struct {
	cfg   *config.Config
	users *services.UserService
}

func NewLoginHandler(cfg *config.Config, users *services.UserService) *LoginHandler {
	return &LoginHandler{cfg: cfg, users: users}
}

// AccessToken implements the OAuth2 password grant. The form's username
// field carries the email address.
func (h *LoginHandler) AccessToken(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.Authenticate(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInactiveUser) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Inactive user",
			})
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Incorrect email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	if err := h.users.TouchLastLogin(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	token, err := security.CreateAccessToken(user.ID.String(), h.cfg.AccessTokenExpiry, []byte(h.cfg.JWTSecret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create access token",
		})
	}

	return c.JSON(dto.Token{AccessToken: token, TokenType: "bearer"})
}

// TestToken echoes the identity the middleware resolved, so clients can
// verify a stored token without side effects.
func (h *LoginHandler) TestToken(c *fiber.Ctx) error {
	return c.JSON(dto.NewUserPublic(identity.CurrentUser(c)))
}
