package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for account operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error)

	// Validation and checks
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)

	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole) error
}
