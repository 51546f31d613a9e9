package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Directory is the user store consumed for assignee and actor validation.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Exists implements workflow.UserDirectory.
func (d *Directory) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// CanReview implements workflow.UserDirectory. It reports whether the user
// holds a role that grants review rights on borehole records.
func (d *Directory) CanReview(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := d.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Role.GrantsReview(), nil
}

func (d *Directory) Get(ctx context.Context, userID uuid.UUID) (*User, error) {
	var user User
	err := d.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Create registers a user with a bcrypt password hash.
func (d *Directory) Create(ctx context.Context, email, fullName, password string, role Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := d.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
