package repositories

import (
	"context"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"gorm.io/gorm"
)

// CourseRepository covers courses and their question/choice catalog
type CourseRepository interface {
	// Basic operations
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetWithCatalog(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) // Questions and choices preloaded
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Listing
	ListTop(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Course, error)

	// Denormalized counter
	IncrementEnrollment(ctx context.Context, tx *gorm.DB, id uint, delta int) error
	SetEnrollment(ctx context.Context, tx *gorm.DB, id uint, total int) error

	// Cache maintenance, safe to call after commit
	InvalidateCache(ctx context.Context, id uint)
}
