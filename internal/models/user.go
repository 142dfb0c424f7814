package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the canonical identity record. Password-based accounts carry a
// bcrypt hash; accounts provisioned from oauth2-proxy headers carry a
// provider binding instead and have no hash at all.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username       *string   `gorm:"size:255;uniqueIndex" json:"username"`
	FullName       *string   `gorm:"size:255" json:"full_name"`
	HashedPassword *string   `json:"-"`
	OAuthProvider  *string   `gorm:"size:50" json:"-"`
	ExternalID     *string   `gorm:"size:255" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser    bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
	LastLogin      time.Time `json:"last_login"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName is the admin-panel rendering of a user.
func (u *User) DisplayName() string {
	name := u.Email
	if u.Username != nil && *u.Username != "" {
		name = *u.Username
	}
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName + " (" + name + ")"
	}
	return name
}
