package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/stackpad/backend/internal/admin"
	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/graphql"
	"github.com/stackpad/backend/internal/handlers"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	resolver *identity.Resolver,
	loginHandler *handlers.LoginHandler,
	userHandler *handlers.UserHandler,
	itemHandler *handlers.ItemHandler,
	healthHandler *handlers.HealthHandler,
	graphqlHandler *graphql.Handler,
	adminHandler *admin.Handler,
) {
	requireUser := resolver.RequireUser()
	requireSuperuser := middleware.RequireSuperuser()

	api := app.Group("/api/v1")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/utils/health-check", healthHandler.Check)

	// Login rate limit: 10 req/min per IP (stricter)
	login := api.Group("/login")
	login.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	login.Post("/access-token", loginHandler.AccessToken)
	login.Post("/test-token", requireUser, loginHandler.TestToken)

	// Users. Signup stays public, so auth is applied per route rather
	// than on the group; /me must be registered before /:id.
	users := api.Group("/users")
	users.Post("/signup", userHandler.Signup)
	users.Get("/me", requireUser, userHandler.Me)
	users.Patch("/me", requireUser, userHandler.UpdateMe)
	users.Patch("/me/password", requireUser, userHandler.UpdateMyPassword)
	users.Delete("/me", requireUser, userHandler.DeleteMe)
	users.Get("/", requireUser, requireSuperuser, userHandler.List)
	users.Post("/", requireUser, requireSuperuser, userHandler.Create)
	users.Get("/:id", requireUser, requireSuperuser, userHandler.GetByID)
	users.Patch("/:id", requireUser, requireSuperuser, userHandler.Update)
	users.Delete("/:id", requireUser, requireSuperuser, userHandler.Delete)

	// Items. The whole group runs unauthenticated in the items test
	// configuration; ownership is stamped from the placeholder owner.
	items := api.Group("/items")
	if !cfg.ItemsAuthDisabled {
		items.Use(requireUser)
	}
	items.Get("/", itemHandler.List)
	items.Post("/", itemHandler.Create)
	items.Get("/:id", itemHandler.Get)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)

	// GraphQL read mirror. Identity is optional: me resolves when
	// credentials are present, everything else works anonymously.
	api.Post("/graphql", resolver.Optional(), graphqlHandler.Post)

	// Admin panel (server-rendered, superusers only)
	panel := app.Group("/admin", requireUser, requireSuperuser)
	panel.Get("/", adminHandler.Dashboard)
	panel.Get("/users", adminHandler.UsersList)
	panel.Get("/users/export", adminHandler.UsersExport)
	panel.Get("/users/:id", adminHandler.UserDetail)
	panel.Post("/users/:id/toggle-active", adminHandler.ToggleUserActive)
	panel.Post("/users/:id/toggle-superuser", adminHandler.ToggleUserSuperuser)
	panel.Post("/users/:id/delete", adminHandler.DeleteUser)
	panel.Get("/items", adminHandler.ItemsList)
	panel.Get("/items/export", adminHandler.ItemsExport)
	panel.Get("/items/:id", adminHandler.ItemDetail)
	panel.Post("/items/:id/delete", adminHandler.DeleteItem)
}
