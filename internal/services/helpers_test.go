package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/events"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/onlinecourse-service/internal/validator"
	"github.com/SAP-F-2025/onlinecourse-service/pkg"
)

type testEnv struct {
	db        *gorm.DB
	repo      *postgres.PostgreSQLRepository
	logger    *slog.Logger
	validator *validator.Validator
	publisher *events.MockEventPublisher
	tokens    *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := pkg.NewTestDatabase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		logger:    logger,
		validator: validator.New(),
		publisher: events.NewMockEventPublisher(logger),
		tokens:    auth.NewTokenManager("test-secret", time.Hour, "onlinecourse-service", nil),
	}
}

// seedCourse creates a course with two questions:
// Q1 worth 10 with correct {A, B} and distractor C, Q2 worth 5 with correct D and distractor E.
func (e *testEnv) seedCourse(t *testing.T, title string) *models.Course {
	t.Helper()
	course := &models.Course{
		Title: title,
		Questions: []models.Question{
			{Text: "Q1", Grade: 10, Choices: []models.Choice{
				{Text: "A", IsCorrect: true},
				{Text: "B", IsCorrect: true},
				{Text: "C"},
			}},
			{Text: "Q2", Grade: 5, Choices: []models.Choice{
				{Text: "D", IsCorrect: true},
				{Text: "E"},
			}},
		},
	}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

func (e *testEnv) seedUser(t *testing.T, username string, role models.UserRole) auth.Identity {
	t.Helper()
	user := &models.User{Username: username, Role: role}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return auth.FromUser(user)
}

func (e *testEnv) courseCounter(t *testing.T, courseID uint) int {
	t.Helper()
	var course models.Course
	if err := e.db.First(&course, courseID).Error; err != nil {
		t.Fatalf("failed to reload course: %v", err)
	}
	return course.TotalEnrollment
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	return n
}

func (e *testEnv) enrollmentService() EnrollmentService {
	return NewEnrollmentService(e.repo, e.db, e.logger, e.publisher)
}

func (e *testEnv) examService() ExamService {
	return NewExamService(e.repo, e.db, e.logger, e.publisher)
}
