package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService     services.CourseService
	enrollmentService services.EnrollmentService
}

func NewCourseHandler(
	courseService services.CourseService,
	enrollmentService services.EnrollmentService,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:       NewBaseHandler(logger),
		courseService:     courseService,
		enrollmentService: enrollmentService,
	}
}

// ListCourses lists the most popular courses
// @Summary List top courses
// @Description Returns up to ten courses ordered by total enrollment
// @Tags courses
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.CourseSummary}
// @Failure 500 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListTop(c.Request.Context(), h.identity(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: courses})
}

// GetCourse retrieves a course with its exam
// @Summary Get course
// @Description Returns the course detail with questions and choices
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse{data=models.CourseDetail}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), h.identity(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: course})
}

// Enroll enrolls the caller in a course
// @Summary Enroll in course
// @Description Idempotent. Anonymous callers are redirected to the course without enrolling.
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse{data=services.EnrollmentResult}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	identity := h.identity(c)
	h.LogRequest(c, "Enrolling in course", "course_id", id, "user_id", identity.UserID)

	result, err := h.enrollmentService.Enroll(c.Request.Context(), identity, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// GetEnrollment reports whether the caller is enrolled in a course
// @Summary Enrollment status
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id}/enrollment [get]
func (h *CourseHandler) GetEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	enrolled, err := h.enrollmentService.IsEnrolled(c.Request.Context(), h.identity(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id":   id,
		"is_enrolled": enrolled,
	})
}
