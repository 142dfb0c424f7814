package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a user-owned resource. The owner reference is validated at
// creation time and cascade-deleted together with its user inside one
// transaction; there is no database-level ON DELETE CASCADE.
type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"size:255" json:"description"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
