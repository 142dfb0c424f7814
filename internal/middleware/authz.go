package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
)

// RequireSuperuser gates a route to superusers. It must run after the
// identity middleware has stored the current user.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := identity.CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Not authenticated",
			})
		}
		if !user.IsSuperuser {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "The user doesn't have enough privileges",
			})
		}
		return c.Next()
	}
}
