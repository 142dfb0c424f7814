package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackpad/backend/internal/models"
)

// LoginForm is the OAuth2 password grant body: username carries the email.
type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// CreateUserRequest is the superuser create payload.
type CreateUserRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UpdateUserRequest is the superuser partial-update payload; nil fields are
// left untouched.
type UpdateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UpdateMeRequest is the self-service partial-update payload.
type UpdateMeRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UserPublic struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    *string   `json:"username"`
	FullName    *string   `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

type UsersPublic struct {
	Data  []UserPublic `json:"data"`
	Count int64        `json:"count"`
}

func NewUserPublic(u *models.User) UserPublic {
	return UserPublic{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

func NewUsersPublic(users []models.User, count int64) UsersPublic {
	data := make([]UserPublic, len(users))
	for i := range users {
		data[i] = NewUserPublic(&users[i])
	}
	return UsersPublic{Data: data, Count: count}
}
