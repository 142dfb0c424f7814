package graphql

import (
	"github.com/gofiber/fiber/v2"
	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/services"
)

// Handler executes GraphQL POST requests against the parsed schema.
// Depth and query length are capped at parse time.
type Handler struct {
	schema *graphqlgo.Schema
	users  *services.UserService
}

func NewHandler(users *services.UserService, items *services.ItemService) (*Handler, error) {
	schema, err := graphqlgo.ParseSchema(
		Schema,
		NewResolver(users, items),
		graphqlgo.MaxDepth(10),
		graphqlgo.MaxQueryLength(2000),
	)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, users: users}, nil
}

type postRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) Post(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ctx := WithLoaders(c.UserContext(), NewLoaders(h.users))
	if user := identity.CurrentUser(c); user != nil {
		ctx = WithCurrentUser(ctx, user)
	}

	return c.JSON(h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables))
}
