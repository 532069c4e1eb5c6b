package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/events"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"github.com/SAP-F-2025/onlinecourse-service/internal/telemetry"
)

type examService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewExamService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, publisher events.EventPublisher) ExamService {
	return &examService{
		repo:      repo,
		db:        db,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *examService) Submit(ctx context.Context, identity auth.Identity, courseID uint, choiceIDs []uint, clientInfo map[string]interface{}) (*SubmissionResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ExamService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int("choices", len(choiceIDs)),
	)

	if !identity.IsAuthenticated() {
		return nil, ErrUnauthorized
	}

	course, err := s.getCatalog(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment().GetByUserAndCourse(ctx, s.db, identity.UserID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	choiceIDs = uniqueIDs(choiceIDs)
	if errs := validateChoicesInCatalog(course, choiceIDs); len(errs) > 0 {
		return nil, errs
	}

	submission := &models.Submission{
		EnrollmentID: enrollment.ID,
		ClientInfo:   datatypes.JSON("{}"),
		Choices:      make([]models.Choice, 0, len(choiceIDs)),
	}
	for _, id := range choiceIDs {
		submission.Choices = append(submission.Choices, models.Choice{ID: id})
	}
	if len(clientInfo) > 0 {
		raw, err := json.Marshal(clientInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to encode client info: %w", err)
		}
		submission.ClientInfo = datatypes.JSON(raw)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Submission().Create(ctx, tx, submission)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to submit exam: %w", err)
	}

	grade := GradeSubmission(course.Questions, choiceIDs)
	events.PublishSafely(ctx, s.publisher, s.logger, events.NewEvent(events.EventExamSubmitted, events.ExamSubmittedData{
		SubmissionID: submission.ID,
		UserID:       identity.UserID,
		CourseID:     courseID,
		Score:        grade.Score,
		MaxScore:     grade.MaxScore,
	}))

	s.logger.InfoContext(ctx, "Exam submitted",
		"submission_id", submission.ID,
		"user_id", identity.UserID,
		"course_id", courseID,
		"score", grade.Score)

	return &SubmissionResult{
		SubmissionID: submission.ID,
		CourseID:     courseID,
		RedirectURL:  ResultPath(courseID, submission.ID),
	}, nil
}

func (s *examService) ShowResult(ctx context.Context, identity auth.Identity, courseID, submissionID uint) (*models.ExamResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ExamService.ShowResult")
	defer span.End()

	if !identity.IsAuthenticated() {
		return nil, ErrUnauthorized
	}

	course, err := s.getCatalog(ctx, courseID)
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.Submission().GetByID(ctx, s.db, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission.Enrollment == nil || submission.Enrollment.CourseID != courseID {
		return nil, ErrSubmissionNotFound
	}
	if submission.Enrollment.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, NewPermissionError(identity.UserID, submissionID, "submission", "view", "not the submission owner")
	}

	enrolled := submission.Enrollment.UserID == identity.UserID
	grade := GradeSubmission(course.Questions, submission.ChoiceIDs())

	selected := make([]models.SelectedChoice, 0, len(submission.Choices))
	for _, c := range submission.Choices {
		selected = append(selected, models.SelectedChoice{
			ID:         c.ID,
			QuestionID: c.QuestionID,
			Text:       c.Text,
			IsCorrect:  c.IsCorrect,
		})
	}

	return &models.ExamResult{
		Course:          models.NewCourseSummary(course, enrolled),
		SubmissionID:    submission.ID,
		SubmittedAt:     submission.CreatedAt,
		Score:           grade.Score,
		MaxScore:        grade.MaxScore,
		SelectedChoices: selected,
		Questions:       grade.Questions,
	}, nil
}

func (s *examService) getCatalog(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetWithCatalog(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course catalog: %w", err)
	}
	return course, nil
}

// validateChoicesInCatalog rejects choice IDs that do not belong to the course
func validateChoicesInCatalog(course *models.Course, choiceIDs []uint) ValidationErrors {
	known := make(map[uint]struct{})
	for _, q := range course.Questions {
		for _, c := range q.Choices {
			known[c.ID] = struct{}{}
		}
	}

	var errs ValidationErrors
	for _, id := range choiceIDs {
		if _, ok := known[id]; !ok {
			errs = append(errs, *NewValidationError("choice", "does not belong to this course", id))
		}
	}
	return errs
}
