package expiry

import (
	"errors"
	"net/http"

	"garageadmin/internal/api"
	"garageadmin/internal/auth"
	"garageadmin/internal/garage"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Garages expiring within 30 days
// @Tags         admin,expiry
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} expiry.ListResponse
// @Router       /api/admin/expiring [get]
func (h *Handler) Expiring(c *gin.Context) {
	entries, err := h.service.Expiring(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to fetch expiring garages")
		c.JSON(http.StatusInternalServerError, api.Err("Failed to fetch expiring garages"))
		return
	}
	c.JSON(http.StatusOK, ListResponse{Garages: entries})
}

// @Summary      Queue an expiry e-mail
// @Tags         expiry
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body expiry.SendRequest true "Mail"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/send-expiry-email [post]
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	if err := h.service.Send(c.Request.Context(), req); err != nil {
		logger.WithError(err).Error("Failed to queue expiry email", "to", req.To)
		c.JSON(http.StatusInternalServerError, api.Err("Failed to send email"))
		return
	}

	adminID, _ := auth.GetAdminID(c)
	logger.Info("expiry email queued", "to", req.To, "admin_id", adminID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Email sent"})
}

// @Summary      Send the standard renewal reminder to a garage
// @Tags         admin,expiry
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Garage ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/admin/garages/{id}/remind [post]
func (h *Handler) Remind(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Err("Invalid garage ID"))
		return
	}

	err = h.service.Remind(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Reminder sent"})
	case errors.Is(err, garage.ErrGarageNotFound):
		c.JSON(http.StatusNotFound, api.Err("Garage not found"))
	case errors.Is(err, ErrNoSubscription):
		c.JSON(http.StatusConflict, api.Err(err.Error()))
	default:
		logger.WithError(err).Error("Failed to send reminder", "garage_id", id.String())
		c.JSON(http.StatusInternalServerError, api.Err("Failed to send email"))
	}
}
