package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/service"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/response"
)

// ReportHandler wires report generation to HTTP routes.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RosterReport godoc
// @Summary Download a graded roster as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param teacher path string true "Teacher or account ID"
// @Param subject path string true "Subject ID"
// @Param semester query int true "Semester"
// @Param acad_year query string true "Academic year"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} binary
// @Router /reports/roster/{teacher}/{subject} [get]
func (h *ReportHandler) RosterReport(c *gin.Context) {
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
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))

	data, contentType, err := h.reports.RosterReport(c.Request.Context(), c.Param("teacher"), c.Param("subject"), semester, acadYear, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("roster-%s-%s.%s", c.Param("subject"), acadYear, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// TeacherLoad godoc
// @Summary Count schedule entries referencing a teacher
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param teacher path string true "Teacher or account ID"
// @Success 200 {object} response.Envelope
// @Router /reports/teacher-load/{teacher} [get]
func (h *ReportHandler) TeacherLoad(c *gin.Context) {
	load, err := h.reports.TeacherLoad(c.Request.Context(), c.Param("teacher"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, load, nil)
}
