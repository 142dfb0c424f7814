package dto

import (
	"github.com/google/uuid"

	"github.com/stackpad/backend/internal/models"
)

type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateItemRequest applies only the fields that were supplied.
type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type ItemPublic struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

type ItemsPublic struct {
	Data  []ItemPublic `json:"data"`
	Count int64        `json:"count"`
}

func NewItemPublic(item *models.Item) ItemPublic {
	return ItemPublic{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		OwnerID:     item.OwnerID,
	}
}

func NewItemsPublic(items []models.Item, count int64) ItemsPublic {
	data := make([]ItemPublic, len(items))
	for i := range items {
		data[i] = NewItemPublic(&items[i])
	}
	return ItemsPublic{Data: data, Count: count}
}
