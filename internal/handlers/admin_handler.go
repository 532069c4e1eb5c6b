package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves catalog maintenance for administrators
type AdminHandler struct {
	BaseHandler
	importExportService services.ImportExportService
	enrollmentService   services.EnrollmentService
}

func NewAdminHandler(
	importExportService services.ImportExportService,
	enrollmentService services.EnrollmentService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
		enrollmentService:   enrollmentService,
	}
}

// ImportCatalog creates courses from an uploaded spreadsheet
// @Summary Import catalog
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Success 201 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/catalog/import [post]
func (h *AdminHandler) ImportCatalog(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing catalog file",
			Details: err.Error(),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded catalog")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unreadable catalog file",
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing catalog", "filename", header.Filename, "size", header.Size)

	result, err := h.importExportService.ImportCatalog(c.Request.Context(), h.identity(c), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: result})
}

// ExportResults downloads the submissions of a course as a spreadsheet
// @Summary Export course results
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id}/results/export [get]
func (h *AdminHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	buf, err := h.importExportService.ExportCourseResults(c.Request.Context(), h.identity(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="course-%d-results.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ReconcileEnrollment recomputes a course's enrollment counter from the ledger
// @Summary Reconcile enrollment counter
// @Tags admin
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse{data=services.ReconcileResult}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id}/enrollment/reconcile [post]
func (h *AdminHandler) ReconcileEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.enrollmentService.ReconcileCount(c.Request.Context(), h.identity(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: result})
}
