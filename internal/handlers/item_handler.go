package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/services"
)

type ItemHandler struct {
	cfg   *config.Config
	items *services.ItemService
}

func NewItemHandler(cfg *config.Config, items *services.ItemService) *ItemHandler {
	return &ItemHandler{cfg: cfg, items: items}
}

func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, count, err := h.items.List(listParams(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list items",
		})
	}
	return c.JSON(dto.NewItemsPublic(items, count))
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Item not found",
		})
	}

	item, err := h.items.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.NewItemPublic(item))
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.items.Create(h.ownerID(c), &req)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: userIDNotFoundMessage,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewItemPublic(item))
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Item not found",
		})
	}

	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, err := h.items.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	if !h.canModify(c, item) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Not enough permissions",
		})
	}

	item, err = h.items.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Item not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(dto.NewItemPublic(item))
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Item not found",
		})
	}

	item, err := h.items.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	if !h.canModify(c, item) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Not enough permissions",
		})
	}

	if err := h.items.Delete(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete item",
		})
	}

	return c.JSON(dto.Message{Message: "Item deleted successfully"})
}

// ownerID stamps ownership from the resolved identity, or from the
// configured placeholder owner when item routes run unauthenticated.
func (h *ItemHandler) ownerID(c *fiber.Ctx) uuid.UUID {
	if user := identity.CurrentUser(c); user != nil {
		return user.ID
	}
	return h.cfg.DefaultItemOwnerID
}

func (h *ItemHandler) canModify(c *fiber.Ctx, item *models.Item) bool {
	if h.cfg.ItemsAuthDisabled {
		return true
	}
	user := identity.CurrentUser(c)
	return user != nil && (user.IsSuperuser || item.OwnerID == user.ID)
}
