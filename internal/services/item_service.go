package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackpad/backend/internal/database"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/models"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrOwnerNotFound = errors.New("item owner does not exist")
)

var itemSortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"created_at": "created_at",
}

type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

func (s *ItemService) Get(id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *ItemService) List(p ListParams) ([]models.Item, int64, error) {
	query := s.db.Model(&models.Item{}).
		Scopes(database.Search(p.Search, "title", "description"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	err := query.
		Scopes(
			database.OrderBy(p.SortBy, p.SortOrder, itemSortColumns, "id"),
			database.Paginate(p.Skip, p.Limit),
		).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ItemService) Count(search string) (int64, error) {
	var total int64
	err := s.db.Model(&models.Item{}).
		Scopes(database.Search(search, "title", "description")).
		Count(&total).Error
	return total, err
}

func (s *ItemService) Create(ownerID uuid.UUID, req *dto.CreateItemRequest) (*models.Item, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > 255 {
		return nil, errors.New("title must be between 1 and 255 characters")
	}
	if req.Description != nil && len(*req.Description) > 255 {
		return nil, errors.New("description must be at most 255 characters")
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	item := models.Item{
		ID:          uuid.New(),
		Title:       title,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return &item, nil
}

func (s *ItemService) Update(id uuid.UUID, req *dto.UpdateItemRequest) (*models.Item, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > 255 {
			return nil, errors.New("title must be between 1 and 255 characters")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		if len(*req.Description) > 255 {
			return nil, errors.New("description must be at most 255 characters")
		}
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.Get(id)
}

func (s *ItemService) Delete(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&models.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *ItemService) CountByOwner(ownerID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.Model(&models.Item{}).Where("owner_id = ?", ownerID).Count(&total).Error
	return total, err
}
