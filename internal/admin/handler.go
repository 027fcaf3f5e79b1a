package admin

import (
	"errors"
	"net/http"

	"garageadmin/internal/api"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Login godoc
// @Summary      Admin login
// @Description  Exchanges admin credentials for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      admin.LoginRequest  true  "Credentials"
// @Success      200      {object}  admin.LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid_request", Message: "Please fill in all fields"})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid_request", Message: "Please fill in all fields"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized", Message: "Invalid credentials"})
	default:
		logger.WithError(err).Error("admin login failed")
		c.JSON(http.StatusInternalServerError, api.Err("Login failed"))
	}
}
