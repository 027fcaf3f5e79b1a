package garage

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"garageadmin/internal/api"
	"garageadmin/internal/auth"
	"garageadmin/internal/logger"
	"garageadmin/internal/plan"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Sign up a garage
// @Tags         garages
// @Accept       json
// @Produce      json
// @Param        request body garage.SignUpRequest true "Garage details"
// @Success      201 {object} garage.Garage
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/garages [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	g, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to sign up garage")
		return
	}

	c.JSON(http.StatusCreated, g)
}

// @Summary      Request a subscription
// @Description  Moves an unsubscribed garage to pending approval on the chosen plan.
// @Tags         garages
// @Accept       json
// @Produce      json
// @Param        id path string true "Garage ID"
// @Param        request body garage.SubscribeRequest true "Plan and payment"
// @Success      200 {object} garage.Garage
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/garages/{id}/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	g, err := h.service.Subscribe(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to subscribe garage")
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      List all garages
// @Tags         admin,garages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} garage.ListResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/allgarages [get]
func (h *Handler) ListAll(c *gin.Context) {
	garages, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch garages")
		return
	}

	c.JSON(http.StatusOK, ListResponse{Garages: garages})
}

// @Summary      List garages awaiting approval
// @Tags         admin,garages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} garage.ListResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/garages/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	garages, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch pending garages")
		return
	}

	c.JSON(http.StatusOK, ListResponse{Garages: garages})
}

// @Summary      Get a garage
// @Tags         admin,garages
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Garage ID"
// @Success      200 {object} garage.Garage
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/admin/garages/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch garage")
		return
	}

	c.JSON(http.StatusOK, g)
}

// @Summary      Approve a garage
// @Tags         admin,garages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Garage ID"
// @Success      200 {object} garage.Garage
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/admin/garages/approve/{id} [put]
func (h *Handler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// The body ({"status":"approved"}) is optional and carries nothing the transition needs.
	var req ApproveRequest
	_ = c.ShouldBindJSON(&req)

	g, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to approve garage")
		return
	}
	reviewLog(c, id).Info("garage approved")

	c.JSON(http.StatusOK, g)
}

// @Summary      Reject a garage
// @Tags         admin,garages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Garage ID"
// @Param        request body garage.RejectRequest true "Rejection reason"
// @Success      200 {object} garage.Garage
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/admin/garages/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	g, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err, "Failed to reject garage")
		return
	}
	reviewLog(c, id).Info("garage rejected", "reason", g.RejectionReason)

	c.JSON(http.StatusOK, g)
}

func reviewLog(c *gin.Context, id uuid.UUID) *slog.Logger {
	return logger.WithFields(map[string]interface{}{
		"garage_id": id.String(),
		"reviewer":  auth.GetAdminEmail(c),
	})
}

type renewRequest struct {
	Months int `json:"months"`
}

// @Summary      Renew an active subscription
// @Tags         admin,garages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Garage ID"
// @Success      200 {object} garage.Garage
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/admin/garages/{id}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// An empty body renews by the default single month.
	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	g, err := h.service.Renew(c.Request.Context(), id, req.Months)
	if err != nil {
		respondError(c, err, "Failed to renew subscription")
		return
	}

	c.JSON(http.StatusOK, g)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Err("Invalid garage ID"))
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGarageNotFound):
		c.JSON(http.StatusNotFound, api.Err("Garage not found"))
	case errors.Is(err, plan.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, api.Err("Plan not found"))
	case errors.Is(err, ErrReasonRequired):
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.Err(err.Error()))
	default:
		logger.WithError(err).Error(fallback, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.Err(fallback))
	}
}
