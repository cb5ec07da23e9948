package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/models"
	"github.com/mie-portal/portal-api/internal/service"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/response"
)

// GradeHandler wires grade operations to HTTP routes.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs a new GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// ListByStudent godoc
// @Summary List a student's grade records
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param student_number query string false "Student number"
// @Param student_id query string false "Student record id"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) ListByStudent(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:     strings.TrimSpace(c.Query("student_id")),
		StudentNumber: strings.TrimSpace(c.Query("student_number")),
	}
	records, err := h.grades.ListByStudent(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Upsert godoc
// @Summary Record or replace a mark
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	record, err := h.grades.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Roster godoc
// @Summary List scheduled students with grade overlay
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param teacher path string true "Teacher or account ID"
// @Param subject path string true "Subject ID"
// @Param semester query int true "Semester"
// @Param acad_year query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/roster/{teacher}/{subject} [get]
func (h *GradeHandler) Roster(c *gin.Context) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be numeric"))
		return
	}
	acadYear := strings.TrimSpace(c.Query("acad_year"))
	if acadYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "acad_year is required"))
		return
	}

	roster, err := h.grades.Roster(c.Request.Context(), c.Param("teacher"), c.Param("subject"), semester, acadYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Delete godoc
// @Summary Delete a grade record
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade record ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.grades.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
