package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// CreateIfAbsent relies on idx_enrollment_user_course. A conflicting insert affects no rows.
func (e *EnrollmentPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error) {
	if !enrollment.Mode.IsValid() {
		return false, fmt.Errorf("failed to create enrollment: unknown mode %q", enrollment.Mode)
	}
	result := e.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(enrollment)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create enrollment: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment not found for user %d and course %d: %w", userID, courseID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	exists, err := e.helpers.Exists(ctx, tx, &models.Enrollment{}, "user_id = ? AND course_id = ?", userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// EnrolledCourseIDs returns the subset of courseIDs the user is enrolled in
func (e *EnrollmentPostgreSQL) EnrolledCourseIDs(ctx context.Context, tx *gorm.DB, userID uint, courseIDs []uint) (map[uint]bool, error) {
	enrolled := make(map[uint]bool, len(courseIDs))
	if len(courseIDs) == 0 {
		return enrolled, nil
	}

	var ids []uint
	if err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrolled courses: %w", err)
	}

	for _, id := range ids {
		enrolled[id] = true
	}
	return enrolled, nil
}

func (e *EnrollmentPostgreSQL) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	var count int64
	if err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}
