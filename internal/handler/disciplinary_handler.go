package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/service"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/response"
)

// DisciplinaryHandler wires violation record operations to HTTP routes.
type DisciplinaryHandler struct {
	records *service.DisciplinaryService
}

// NewDisciplinaryHandler constructs a new DisciplinaryHandler.
func NewDisciplinaryHandler(records *service.DisciplinaryService) *DisciplinaryHandler {
	return &DisciplinaryHandler{records: records}
}

// ListByStudent godoc
// @Summary List a student's violation history
// @Tags Disciplinary
// @Produce json
// @Security BearerAuth
// @Param student_number path string true "Student number"
// @Success 200 {object} response.Envelope
// @Router /disciplinary/student/{student_number} [get]
func (h *DisciplinaryHandler) ListByStudent(c *gin.Context) {
	records, err := h.records.ListByStudent(c.Request.Context(), c.Param("student_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Create godoc
// @Summary File a violation record
// @Tags Disciplinary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.DisciplinaryRequest true "Violation payload"
// @Success 201 {object} response.Envelope
// @Router /disciplinary [post]
func (h *DisciplinaryHandler) Create(c *gin.Context) {
	var req service.DisciplinaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid disciplinary payload"))
		return
	}
	record, err := h.records.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Amend a violation record
// @Tags Disciplinary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param payload body service.DisciplinaryRequest true "Violation payload"
// @Success 200 {object} response.Envelope
// @Router /disciplinary/{id} [put]
func (h *DisciplinaryHandler) Update(c *gin.Context) {
	var req service.DisciplinaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid disciplinary payload"))
		return
	}
	record, err := h.records.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// DeleteMany godoc
// @Summary Delete violation records in bulk
// @Tags Disciplinary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body handler.DeleteManyRequest true "Record ids"
// @Success 200 {object} response.Envelope
// @Router /disciplinary [delete]
func (h *DisciplinaryHandler) DeleteMany(c *gin.Context) {
	var req DeleteManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete payload"))
		return
	}
	deleted, err := h.records.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
