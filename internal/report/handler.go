package report

import (
	"net/http"

	"garageadmin/internal/api"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Dashboard summary
// @Tags         admin,reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} report.Dashboard
// @Router       /api/admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to build dashboard")
		c.JSON(http.StatusInternalServerError, api.Err("Failed to build dashboard"))
		return
	}
	c.JSON(http.StatusOK, d)
}
