package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/onlinecourse-service/internal/cache"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// Create inserts a course together with its questions and choices
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "top:*")
	return nil
}

// GetByID retrieves a course row with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("course not found with ID %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetWithCatalog loads a course with its questions and choices, cached as one entry
func (c *CoursePostgreSQL) GetWithCatalog(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CatalogKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("questions.id ASC")
			}).
			Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
				return db.Order("choices.id ASC")
			}).
			First(&dbCourse, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("course not found with ID %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get course catalog: %w", err)
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	exists, err := c.helpers.Exists(ctx, tx, &models.Course{}, "id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// ListTop returns the most enrolled courses, ties broken by ID
func (c *CoursePostgreSQL) ListTop(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Course, error) {
	if limit <= 0 || limit > repositories.TopCoursesLimit {
		limit = repositories.TopCoursesLimit
	}

	db := c.getDB(tx)
	var courses []*models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.TopCoursesKey(limit), &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourses []*models.Course
		if err := db.WithContext(ctx).
			Order("total_enrollment DESC").
			Order("id ASC").
			Limit(limit).
			Find(&dbCourses).Error; err != nil {
			return nil, fmt.Errorf("failed to list top courses: %w", err)
		}
		return dbCourses, nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

// IncrementEnrollment adjusts the denormalized counter with a single atomic UPDATE
func (c *CoursePostgreSQL) IncrementEnrollment(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		UpdateColumn("total_enrollment", gorm.Expr("total_enrollment + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to increment enrollment counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("course not found with ID %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// SetEnrollment overwrites the counter, used when reconciling it with the ledger
func (c *CoursePostgreSQL) SetEnrollment(ctx context.Context, tx *gorm.DB, id uint, total int) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		UpdateColumn("total_enrollment", total)
	if result.Error != nil {
		return fmt.Errorf("failed to set enrollment counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := c.ExistsByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("course not found with ID %d: %w", id, repositories.ErrNotFound)
		}
	}
	return nil
}

func (c *CoursePostgreSQL) InvalidateCache(ctx context.Context, id uint) {
	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
