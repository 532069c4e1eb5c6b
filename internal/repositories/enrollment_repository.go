package repositories

import (
	"context"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"gorm.io/gorm"
)

// EnrollmentRepository is the storage side of the enrollment ledger
type EnrollmentRepository interface {
	// CreateIfAbsent inserts the enrollment unless (user_id, course_id) already exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error)

	// Checks
	Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	EnrolledCourseIDs(ctx context.Context, tx *gorm.DB, userID uint, courseIDs []uint) (map[uint]bool, error)

	// Aggregates
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
}
