package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

const maxFormMemory = 1 << 20

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// SubmitExam records the selected choices and points at the result view
// @Summary Submit exam
// @Description Accepts form fields named choice<N> whose values are choice IDs
// @Tags exams
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path uint true "Course ID"
// @Success 201 {object} SuccessResponse{data=services.SubmissionResult}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/submit [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	if err := h.parseForm(c); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid form payload",
			Details: err.Error(),
		})
		return
	}

	choiceIDs, err := services.ExtractAnswers(c.Request.PostForm)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	identity := h.identity(c)
	h.LogRequest(c, "Submitting exam", "course_id", courseID, "user_id", identity.UserID, "choices", len(choiceIDs))

	clientInfo := map[string]interface{}{
		"ip":         c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	}

	result, err := h.examService.Submit(c.Request.Context(), identity, courseID, choiceIDs, clientInfo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Location", result.RedirectURL)
	c.JSON(http.StatusCreated, SuccessResponse{Data: result})
}

// GetResult shows a graded submission
// @Summary Exam result
// @Tags exams
// @Produce json
// @Param id path uint true "Course ID"
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} SuccessResponse{data=models.ExamResult}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/submissions/{submission_id}/result [get]
func (h *ExamHandler) GetResult(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	result, err := h.examService.ShowResult(c.Request.Context(), h.identity(c), courseID, submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

func (h *ExamHandler) parseForm(c *gin.Context) error {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.ParseMultipartForm(maxFormMemory)
	}
	return c.Request.ParseForm()
}
