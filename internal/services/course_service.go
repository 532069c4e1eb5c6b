package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"gorm.io/gorm"
)

type courseService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) CourseService {
	return &courseService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ListTop returns the most enrolled courses annotated for the caller
func (s *courseService) ListTop(ctx context.Context, identity auth.Identity) ([]models.CourseSummary, error) {
	courses, err := s.repo.Course().ListTop(ctx, s.db, repositories.TopCoursesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	enrolled := map[uint]bool{}
	if identity.IsAuthenticated() && len(courses) > 0 {
		ids := make([]uint, len(courses))
		for i, c := range courses {
			ids[i] = c.ID
		}
		enrolled, err = s.repo.Enrollment().EnrolledCourseIDs(ctx, s.db, identity.UserID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to annotate courses: %w", err)
		}
	}

	summaries := make([]models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, models.NewCourseSummary(c, enrolled[c.ID]))
	}
	return summaries, nil
}

func (s *courseService) GetByID(ctx context.Context, identity auth.Identity, courseID uint) (*models.CourseDetail, error) {
	course, err := s.repo.Course().GetWithCatalog(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrolled := false
	if identity.IsAuthenticated() {
		enrolled, err = s.repo.Enrollment().Exists(ctx, s.db, identity.UserID, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
	}

	return models.NewCourseDetail(course, enrolled), nil
}
