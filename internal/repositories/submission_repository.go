package repositories

import (
	"context"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository stores exam attempts. Submissions are immutable once created.
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) // Enrollment and choices preloaded
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, error)
}
