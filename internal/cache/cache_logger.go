package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// CourseKey is the cache key of a single course row
func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

// CatalogKey is the cache key of a course with its questions and choices
func CatalogKey(courseID uint) string {
	return fmt.Sprintf("catalog:%d", courseID)
}

// TopCoursesKey is the cache key of the popular course listing
func TopCoursesKey(limit int) string {
	return fmt.Sprintf("top:%d", limit)
}

// InvalidateCourseCache drops the course row, its catalog and every listing that embeds its counter
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID), CatalogKey(courseID))
	SafeInvalidatePattern(ctx, cm.Course, "top:*")
}
