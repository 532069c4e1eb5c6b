package postgres

import (
	"context"

	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// Exists counts rows of model matching the condition
func (h *SharedHelpers) Exists(ctx context.Context, tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	db := h.db
	if tx != nil {
		db = tx
	}

	var count int64
	err := db.WithContext(ctx).
		Model(model).
		Where(query, args...).
		Count(&count).Error
	return count > 0, err
}

// ApplySubmissionFilters applies common filters to submission queries.
// The query must already join enrollments.
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("enrollments.course_id = ?", *filters.CourseID)
	}
	if filters.UserID != nil {
		query = query.Where("enrollments.user_id = ?", *filters.UserID)
	}
	return h.ApplyPagination(query, filters.Limit, filters.Offset)
}

// ApplyPagination applies limit and offset when they are set
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
