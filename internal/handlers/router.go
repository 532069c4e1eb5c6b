package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

const healthCheckTimeout = 2 * time.Second

type HandlerManager struct {
	courseHandler  *CourseHandler
	examHandler    *ExamHandler
	userHandler    *UserHandler
	adminHandler   *AdminHandler
	authMiddleware *AuthMiddleware

	serviceManager services.ServiceManager
	logger         utils.Logger
}

// NewHandlerManager wires handlers over an initialized service manager
func NewHandlerManager(
	serviceManager services.ServiceManager,
	resolver IdentityResolver,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		courseHandler:  NewCourseHandler(serviceManager.Course(), serviceManager.Enrollment(), logger),
		examHandler:    NewExamHandler(serviceManager.Exam(), logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		adminHandler:   NewAdminHandler(serviceManager.ImportExport(), serviceManager.Enrollment(), logger),
		authMiddleware: NewAuthMiddleware(resolver, logger),
		serviceManager: serviceManager,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", hm.userHandler.Register)
			authRoutes.POST("/login", hm.userHandler.Login)
			authRoutes.POST("/logout", hm.authMiddleware.RequireAuth(), hm.userHandler.Logout)
			authRoutes.GET("/me", hm.authMiddleware.RequireAuth(), hm.userHandler.Me)
		}

		courses := v1.Group("/courses")
		{
			// Browsing and enrolling work for anonymous callers too
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.POST("/:id/enroll", hm.courseHandler.Enroll)
			courses.GET("/:id/enrollment", hm.courseHandler.GetEnrollment)

			courses.POST("/:id/submit", hm.authMiddleware.RequireAuth(), hm.examHandler.SubmitExam)
			courses.GET("/:id/submissions/:submission_id/result", hm.authMiddleware.RequireAuth(), hm.examHandler.GetResult)
		}

		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireAdmin())
		{
			admin.POST("/catalog/import", hm.adminHandler.ImportCatalog)
			admin.GET("/courses/:id/results/export", hm.adminHandler.ExportResults)
			admin.POST("/courses/:id/enrollment/reconcile", hm.adminHandler.ReconcileEnrollment)
		}
	}
}

// HealthCheck reports database and cache reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.LoggerFromContext(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "onlinecourse-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "onlinecourse-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
