package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackpad/backend/internal/database"
	"github.com/stackpad/backend/internal/dto"
	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/security"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrSamePassword       = errors.New("new password cannot be the same as the current one")
)

// ListParams is the shared windowing/filter contract for list endpoints.
// Unrecognized SortBy values fall back to each entity's default column.
type ListParams struct {
	Skip      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

var userSortColumns = map[string]string{
	"id":         "id",
	"email":      "email",
	"username":   "username",
	"full_name":  "full_name",
	"created_at": "created_at",
	"last_login": "last_login",
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads users in one query; callers reassemble order themselves.
func (s *UserService) GetByIDs(ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) List(p ListParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).
		Scopes(database.Search(p.Search, "email", "username", "full_name"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Scopes(
			database.OrderBy(p.SortBy, p.SortOrder, userSortColumns, "created_at"),
			database.Paginate(p.Skip, p.Limit),
		).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Count() (int64, error) {
	var total int64
	err := s.db.Model(&models.User{}).Count(&total).Error
	return total, err
}

func (s *UserService) Create(req *dto.CreateUserRequest) (*models.User, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := models.User{
		ID:             uuid.New(),
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: &hash,
		IsActive:       true,
		LastLogin:      now,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// CreateFromProxyHeaders provisions a passwordless account for an identity
// the fronting proxy has already authenticated.
func (s *UserService) CreateFromProxyHeaders(email, username, fullName string) (*models.User, error) {
	provider := "oauth2-proxy"
	user := models.User{
		ID:            uuid.New(),
		Email:         email,
		FullName:      &fullName,
		OAuthProvider: &provider,
		ExternalID:    &username,
		IsActive:      true,
		IsSuperuser:   false,
		LastLogin:     time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return &user, nil
}

// GetOrCreateByUsername resolves the username-keyed header identity. On an
// existing user the stored email is refreshed and last_login advanced; the
// returned flag reports whether a new record was created.
func (s *UserService) GetOrCreateByUsername(username, email string) (*models.User, bool, error) {
	var user models.User
	err := s.db.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:        uuid.New(),
			Email:     email,
			Username:  &username,
			IsActive:  true,
			LastLogin: time.Now(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	updates := map[string]interface{}{"last_login": now}
	if email != "" && user.Email != email {
		updates["email"] = email
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, false, err
	}
	if email != "" {
		user.Email = email
	}
	user.LastLogin = now
	return &user, false, nil
}

func (s *UserService) TouchLastLogin(user *models.User) error {
	now := time.Now()
	if err := s.db.Model(user).Update("last_login", now).Error; err != nil {
		return err
	}
	user.LastLogin = now
	return nil
}

func (s *UserService) UpdateMe(user *models.User, req *dto.UpdateMeRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Email != nil && *req.Email != "" {
		var existing models.User
		if err := s.db.Where("email = ?", *req.Email).First(&existing).Error; err == nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		}
		updates["email"] = *req.Email
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetByID(user.ID)
}

func (s *UserService) AdminUpdate(id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Email != nil && *req.Email != "" {
		var existing models.User
		if err := s.db.Where("email = ?", *req.Email).First(&existing).Error; err == nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["hashed_password"] = hash
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserService) UpdatePassword(user *models.User, currentPassword, newPassword string) error {
	if user.HashedPassword == nil || !security.VerifyPassword(currentPassword, *user.HashedPassword) {
		return ErrIncorrectPassword
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Model(user).Update("hashed_password", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.HashedPassword = &hash
	return nil
}

// Authenticate verifies an email/password pair. Inactive accounts are
// rejected before the password is checked, so an inactive user always
// sees the same failure whatever they type. Accounts provisioned from
// proxy headers carry no hash and can never password-authenticate.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	if user.HashedPassword == nil || !security.VerifyPassword(password, *user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Delete removes the user and every item they own in one transaction.
func (s *UserService) Delete(id uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// EnsureDefaultItemOwner seeds the placeholder account that owns items
// created through the unauthenticated test configuration.
func (s *UserService) EnsureDefaultItemOwner(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := "items-test"
	user = models.User{
		ID:        id,
		Email:     "items-test@localhost",
		Username:  &username,
		IsActive:  true,
		LastLogin: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create default item owner: %w", err)
	}
	return &user, nil
}

// EnsureFirstSuperuser seeds the initial admin account at startup. When the
// account already exists it is returned untouched, so reruns write nothing.
func (s *UserService) EnsureFirstSuperuser(email, password string) (*models.User, bool, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hash, hashErr := security.HashPassword(password)
	if hashErr != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", hashErr)
	}
	user = models.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: &hash,
		IsActive:       true,
		IsSuperuser:    true,
		LastLogin:      time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create first superuser: %w", err)
	}
	return &user, true, nil
}
