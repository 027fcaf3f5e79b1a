package payment

import (
	"net/http"

	"garageadmin/internal/api"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// @Summary      Payment history
// @Tags         admin,payments
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "all, completed, pending or failed"
// @Success      200 {object} payment.History
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/admin/payments [get]
func (h *Handler) List(c *gin.Context) {
	status, err := ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	payments, err := h.ledger.List(c.Request.Context(), status)
	if err != nil {
		logger.WithError(err).Error("Failed to load payments")
		c.JSON(http.StatusInternalServerError, api.Err("Failed to load payments"))
		return
	}

	c.JSON(http.StatusOK, History{Payments: payments, TotalRevenue: TotalRevenue(payments)})
}
