package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest

type EnrollmentResult struct {
	CourseID     uint                  `json:"course_id"`
	Enrolled     bool                  `json:"enrolled"`
	Created      bool                  `json:"created"`
	Mode         models.EnrollmentMode `json:"mode,omitempty"`
	DateEnrolled *time.Time            `json:"date_enrolled,omitempty"`
	RedirectURL  string                `json:"redirect_url"`
}

type SubmissionResult struct {
	SubmissionID uint   `json:"submission_id"`
	CourseID     uint   `json:"course_id"`
	RedirectURL  string `json:"redirect_url"`
}

type AuthResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
	RedirectURL string       `json:"redirect_url"`
}

type ReconcileResult struct {
	CourseID uint `json:"course_id"`
	Previous int  `json:"previous"`
	Actual   int  `json:"actual"`
}

type ImportResult struct {
	CourseIDs []uint `json:"course_ids"`
	Courses   int    `json:"courses"`
	Questions int    `json:"questions"`
	Choices   int    `json:"choices"`
}

// ===== PATHS =====

const homePath = "/"

func CoursePath(courseID uint) string {
	return fmt.Sprintf("/api/v1/courses/%d", courseID)
}

func ResultPath(courseID, submissionID uint) string {
	return fmt.Sprintf("/api/v1/courses/%d/submissions/%d/result", courseID, submissionID)
}

// ===== SERVICE INTERFACES =====

type CourseService interface {
	ListTop(ctx context.Context, identity auth.Identity) ([]models.CourseSummary, error)
	GetByID(ctx context.Context, identity auth.Identity, courseID uint) (*models.CourseDetail, error)
}

type EnrollmentService interface {
	// Enroll is idempotent; an anonymous identity is a no-op
	Enroll(ctx context.Context, identity auth.Identity, courseID uint) (*EnrollmentResult, error)
	IsEnrolled(ctx context.Context, identity auth.Identity, courseID uint) (bool, error)

	// Admin maintenance
	ReconcileCount(ctx context.Context, identity auth.Identity, courseID uint) (*ReconcileResult, error)
}

type ExamService interface {
	Submit(ctx context.Context, identity auth.Identity, courseID uint, choiceIDs []uint, clientInfo map[string]interface{}) (*SubmissionResult, error)
	ShowResult(ctx context.Context, identity auth.Identity, courseID, submissionID uint) (*models.ExamResult, error)
}

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, identity auth.Identity) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type ImportExportService interface {
	ImportCatalog(ctx context.Context, identity auth.Identity, r io.Reader) (*ImportResult, error)
	ExportCourseResults(ctx context.Context, identity auth.Identity, courseID uint) (*bytes.Buffer, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Course() CourseService
	Enrollment() EnrollmentService
	Exam() ExamService
	User() UserService

	// Additional service getters
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
