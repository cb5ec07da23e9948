package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/service"
	"github.com/mie-portal/portal-api/pkg/response"
)

// AdminHandler wires admin record lookups to HTTP routes.
type AdminHandler struct {
	admins *service.AdminService
}

// NewAdminHandler constructs a new AdminHandler.
func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// List godoc
// @Summary List admin records
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Get godoc
// @Summary Get an admin by account or record id
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admin or account ID"
// @Success 200 {object} response.Envelope
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}
