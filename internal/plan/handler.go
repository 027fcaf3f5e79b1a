package plan

import (
	"errors"
	"net/http"

	"garageadmin/internal/api"
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

// @Summary      List plans
// @Tags         admin,plans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} plan.Plan
// @Router       /api/admin/plan [get]
func (h *Handler) List(c *gin.Context) {
	plans, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary      Get a plan
// @Tags         admin,plans
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Success      200 {object} plan.Plan
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/admin/plan/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch plan")
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Create a plan
// @Description  amount and durationInMonths accept numbers or strings; unparseable input becomes 0 and 1.
// @Tags         admin,plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body plan.Draft true "Plan"
// @Success      201 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/admin/plan [post]
func (h *Handler) Create(c *gin.Context) {
	var d Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	p, err := h.service.Create(c.Request.Context(), d)
	if err != nil {
		respondError(c, err, "Failed to create plan")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary      Replace a plan
// @Tags         admin,plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Param        request body plan.Draft true "Plan"
// @Success      200 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/admin/plan/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var d Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, api.Err(err.Error()))
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, d)
	if err != nil {
		respondError(c, err, "Failed to update plan")
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Delete a plan
// @Tags         admin,plans
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Plan ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/admin/plan/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete plan")
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Plan deleted"})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Err("Invalid plan ID"))
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, api.Err("Plan not found"))
		return
	}
	logger.WithError(err).Error(fallback, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, api.Err(fallback))
}
