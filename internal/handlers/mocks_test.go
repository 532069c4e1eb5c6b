package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

const (
	learnerToken = "learner-token"
	adminToken   = "admin-token"
)

var (
	learner = auth.Identity{UserID: 7, Username: "ada", Role: models.RoleLearner, TokenID: "jti-7"}
	admin   = auth.Identity{UserID: 1, Username: "root", Role: models.RoleAdmin, TokenID: "jti-1"}
)

type staticResolver map[string]auth.Identity

func (r staticResolver) Resolve(_ context.Context, token string) (auth.Identity, error) {
	if identity, ok := r[token]; ok {
		return identity, nil
	}
	return auth.Anonymous(), auth.ErrInvalidToken
}

// ===== SERVICE MOCKS =====

type mockCourseService struct {
	courses  []models.CourseSummary
	detail   *models.CourseDetail
	err      error
	lastCall auth.Identity
}

func (m *mockCourseService) ListTop(_ context.Context, identity auth.Identity) ([]models.CourseSummary, error) {
	m.lastCall = identity
	return m.courses, m.err
}

func (m *mockCourseService) GetByID(_ context.Context, identity auth.Identity, _ uint) (*models.CourseDetail, error) {
	m.lastCall = identity
	return m.detail, m.err
}

type mockEnrollmentService struct {
	result    *services.EnrollmentResult
	enrolled  bool
	reconcile *services.ReconcileResult
	err       error
	lastCall  auth.Identity
	lastID    uint
}

func (m *mockEnrollmentService) Enroll(_ context.Context, identity auth.Identity, courseID uint) (*services.EnrollmentResult, error) {
	m.lastCall, m.lastID = identity, courseID
	return m.result, m.err
}

func (m *mockEnrollmentService) IsEnrolled(_ context.Context, identity auth.Identity, courseID uint) (bool, error) {
	m.lastCall, m.lastID = identity, courseID
	return m.enrolled, m.err
}

func (m *mockEnrollmentService) ReconcileCount(_ context.Context, identity auth.Identity, courseID uint) (*services.ReconcileResult, error) {
	m.lastCall, m.lastID = identity, courseID
	return m.reconcile, m.err
}

type mockExamService struct {
	submission    *services.SubmissionResult
	result        *models.ExamResult
	err           error
	lastChoiceIDs []uint
	lastInfo      map[string]interface{}
}

func (m *mockExamService) Submit(_ context.Context, _ auth.Identity, _ uint, choiceIDs []uint, clientInfo map[string]interface{}) (*services.SubmissionResult, error) {
	m.lastChoiceIDs, m.lastInfo = choiceIDs, clientInfo
	return m.submission, m.err
}

func (m *mockExamService) ShowResult(_ context.Context, _ auth.Identity, _, _ uint) (*models.ExamResult, error) {
	return m.result, m.err
}

type mockUserService struct {
	resp      *services.AuthResponse
	err       error
	register  *services.RegisterRequest
	login     *services.LoginRequest
	loggedOut auth.Identity
	user      *models.User
	lookedUp  uint
}

func (m *mockUserService) Register(_ context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
	m.register = req
	return m.resp, m.err
}

func (m *mockUserService) Login(_ context.Context, req *services.LoginRequest) (*services.AuthResponse, error) {
	m.login = req
	return m.resp, m.err
}

func (m *mockUserService) Logout(_ context.Context, identity auth.Identity) error {
	m.loggedOut = identity
	return m.err
}

func (m *mockUserService) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.lookedUp = id
	if m.user == nil {
		return nil, services.ErrUserNotFound
	}
	return m.user, m.err
}

type mockImportExportService struct {
	imported *services.ImportResult
	export   *bytes.Buffer
	err      error
	upload   []byte
}

func (m *mockImportExportService) ImportCatalog(_ context.Context, _ auth.Identity, r io.Reader) (*services.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.upload = data
	return m.imported, m.err
}

func (m *mockImportExportService) ExportCourseResults(_ context.Context, _ auth.Identity, _ uint) (*bytes.Buffer, error) {
	return m.export, m.err
}

type mockServiceManager struct {
	course       *mockCourseService
	enrollment   *mockEnrollmentService
	exam         *mockExamService
	user         *mockUserService
	importExport *mockImportExportService
	healthErr    error
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		course:       &mockCourseService{},
		enrollment:   &mockEnrollmentService{},
		exam:         &mockExamService{},
		user:         &mockUserService{},
		importExport: &mockImportExportService{},
	}
}

func (m *mockServiceManager) Course() services.CourseService { return m.course }
func (m *mockServiceManager) Enrollment() services.EnrollmentService { return m.enrollment }
func (m *mockServiceManager) Exam() services.ExamService { return m.exam }
func (m *mockServiceManager) User() services.UserService { return m.user }
func (m *mockServiceManager) ImportExport() services.ImportExportService { return m.importExport }
func (m *mockServiceManager) Initialize(context.Context) error { return nil }
func (m *mockServiceManager) HealthCheck(context.Context) error { return m.healthErr }
func (m *mockServiceManager) Shutdown(context.Context) error { return nil }

// ===== HELPERS =====

func newTestRouter(t *testing.T, sm *mockServiceManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	resolver := staticResolver{learnerToken: learner, adminToken: admin}

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, resolver, logger).SetupRoutes(router)
	return router
}

func doRequest(router http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
