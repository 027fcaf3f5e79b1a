package server

import (
	"context"
	"net/http"
	"time"

	"garageadmin/internal/api"
	"garageadmin/internal/email"
	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

type dependency struct {
	name     string
	critical bool
	ping     func(ctx context.Context) error
}

// @Summary      Health check
// @Description  Pings Postgres and the Redis mail queue. Only a database failure returns 503.
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(db *sqlx.DB, mailer *email.Service) gin.HandlerFunc {
	return healthHandler([]dependency{
		{name: "database", critical: true, ping: db.PingContext},
		{name: "queue", ping: mailer.Ping},
	})
}

func healthHandler(deps []dependency) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Checks: make(map[string]string, len(deps))}
		code := http.StatusOK
		for _, d := range deps {
			if err := d.ping(ctx); err != nil {
				logger.Warn("health check failed", "dependency", d.name, "error", err)
				resp.Checks[d.name] = "down"
				if d.critical {
					resp.Status = "unavailable"
					code = http.StatusServiceUnavailable
				} else if code == http.StatusOK {
					resp.Status = "degraded"
				}
				continue
			}
			resp.Checks[d.name] = "up"
		}

		c.JSON(code, resp)
	}
}

type testEmailRequest struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

// @Summary      Queue a test email
// @Tags         system
// @Produce      json
// @Security     BearerAuth
// @Param        email query string true "Recipient email"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/test-email [post]
func TestEmail(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := testEmailRequest{Email: c.Query("email")}
		if errs := ValidateStruct(req); len(errs) > 0 {
			RespondWithValidationErrors(c, errs)
			return
		}

		body := "This is a test message from the garage admin API. If you can read it, outgoing mail works."
		if err := emailService.Send(c.Request.Context(), req.Email, "Admin", "Garage Admin mail check", body); err != nil {
			c.JSON(http.StatusInternalServerError, api.Err("Failed to queue test email"))
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Test email queued"})
	}
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
