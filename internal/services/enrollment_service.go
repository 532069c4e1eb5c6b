package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/events"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"github.com/SAP-F-2025/onlinecourse-service/internal/telemetry"
)

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	publisher events.EventPublisher
	now       func() time.Time
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, identity auth.Identity, courseID uint) (*EnrollmentResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "EnrollmentService.Enroll")
	defer span.End()
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)))

	if _, err := s.getCourse(ctx, courseID); err != nil {
		return nil, err
	}

	result := &EnrollmentResult{
		CourseID:    courseID,
		RedirectURL: CoursePath(courseID),
	}
	if !identity.IsAuthenticated() {
		return result, nil
	}

	enrollment := &models.Enrollment{
		UserID:       identity.UserID,
		CourseID:     courseID,
		Mode:         models.EnrollmentHonor,
		DateEnrolled: s.now(),
	}

	created := false
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		inserted, err := s.repo.Enrollment().CreateIfAbsent(ctx, tx, enrollment)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.repo.Enrollment().GetByUserAndCourse(ctx, tx, identity.UserID, courseID)
			if err != nil {
				return err
			}
			enrollment = existing
			return nil
		}

		created = true
		return s.repo.Course().IncrementEnrollment(ctx, tx, courseID, 1)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enroll failed")
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	result.Enrolled = true
	result.Created = created
	result.Mode = enrollment.Mode
	result.DateEnrolled = &enrollment.DateEnrolled

	if created {
		s.repo.Course().InvalidateCache(ctx, courseID)
		events.PublishSafely(ctx, s.publisher, s.logger, events.NewEvent(events.EventCourseEnrolled, events.CourseEnrolledData{
			UserID:   identity.UserID,
			CourseID: courseID,
			Mode:     string(enrollment.Mode),
		}))
		s.logger.InfoContext(ctx, "User enrolled", "user_id", identity.UserID, "course_id", courseID)
	}

	return result, nil
}

// IsEnrolled reports ErrCourseNotFound for a missing course, whoever asks
func (s *enrollmentService) IsEnrolled(ctx context.Context, identity auth.Identity, courseID uint) (bool, error) {
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return false, err
	}
	if !identity.IsAuthenticated() {
		return false, nil
	}

	enrolled, err := s.repo.Enrollment().Exists(ctx, s.db, identity.UserID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return enrolled, nil
}

// ReconcileCount rewrites the denormalized counter from the enrollment ledger
func (s *enrollmentService) ReconcileCount(ctx context.Context, identity auth.Identity, courseID uint) (*ReconcileResult, error) {
	if !identity.IsAdmin() {
		return nil, NewPermissionError(identity.UserID, courseID, "course", "reconcile", "admin role required")
	}

	// The cached row may carry a stale counter
	s.repo.Course().InvalidateCache(ctx, courseID)

	var result *ReconcileResult
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		course, err := s.repo.Course().GetByID(ctx, tx, courseID)
		if err != nil {
			return err
		}
		count, err := s.repo.Enrollment().CountByCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if err := s.repo.Course().SetEnrollment(ctx, tx, courseID, int(count)); err != nil {
			return err
		}

		result = &ReconcileResult{CourseID: courseID, Previous: course.TotalEnrollment, Actual: int(count)}
		return nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to reconcile enrollment count: %w", err)
	}

	s.repo.Course().InvalidateCache(ctx, courseID)
	if result.Previous != result.Actual {
		s.logger.WarnContext(ctx, "Enrollment counter drift corrected",
			"course_id", courseID,
			"previous", result.Previous,
			"actual", result.Actual)
	}
	return result, nil
}

func (s *enrollmentService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *enrollmentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
