package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"garageadmin/internal/admin"
	"garageadmin/internal/auth"
	"garageadmin/internal/config"
	"garageadmin/internal/email"
	"garageadmin/internal/expiry"
	"garageadmin/internal/garage"
	"garageadmin/internal/logger"
	"garageadmin/internal/payment"
	"garageadmin/internal/plan"
	"garageadmin/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	admins admin.Service
	limits []*ClientLimiter
	http   *http.Server
}

const limiterIdle = 3 * time.Minute

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	limiter := NewClientLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, limiterIdle)
	loginLimiter := NewClientLimiter(loginRate, loginBurst, limiterIdle)
	go limiter.Run(time.Minute)
	go loginLimiter.Run(time.Minute)
	router.Use(RateLimitMiddleware(limiter))

	ledger := payment.NewMemoryLedger(payment.DemoPayments()...)

	planService := plan.NewService(plan.NewRepository(db))
	garageService := garage.NewService(garage.NewRepository(db), planService, emailService, ledger)
	expiryService := expiry.NewService(garageService, emailService)
	adminService := admin.NewService(admin.NewRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	reportService := report.NewService(garageService, ledger)

	adminHandler := admin.NewHandler(adminService)
	garageHandler := garage.NewHandler(garageService)
	planHandler := plan.NewHandler(planService)
	expiryHandler := expiry.NewHandler(expiryService)
	paymentHandler := payment.NewHandler(ledger)
	reportHandler := report.NewHandler(reportService)

	public := router.Group("/api")
	{
		public.POST("/admin/login", RateLimitMiddleware(loginLimiter), adminHandler.Login)
		public.GET("/plans", planHandler.List)
		public.POST("/garages", garageHandler.SignUp)
		public.POST("/garages/:id/subscribe", garageHandler.Subscribe)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)

	protected := router.Group("/api")
	protected.Use(authMiddleware, adminMiddleware)
	{
		protected.POST("/send-expiry-email", expiryHandler.Send)
	}

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(authMiddleware, adminMiddleware)
	{
		adminGroup.GET("/allgarages", garageHandler.ListAll)
		adminGroup.GET("/garages/pending", garageHandler.ListPending)
		adminGroup.GET("/garages/:id", garageHandler.Get)
		adminGroup.PUT("/garages/approve/:id", garageHandler.Approve)
		adminGroup.POST("/garages/:id/reject", garageHandler.Reject)
		adminGroup.POST("/garages/:id/renew", garageHandler.Renew)
		adminGroup.POST("/garages/:id/remind", expiryHandler.Remind)

		adminGroup.GET("/plan", planHandler.List)
		adminGroup.POST("/plan", planHandler.Create)
		adminGroup.GET("/plan/:id", planHandler.Get)
		adminGroup.PUT("/plan/:id", planHandler.Update)
		adminGroup.DELETE("/plan/:id", planHandler.Delete)

		adminGroup.GET("/expiring", expiryHandler.Expiring)
		adminGroup.GET("/payments", paymentHandler.List)
		adminGroup.GET("/dashboard", reportHandler.Dashboard)
		adminGroup.POST("/test-email", TestEmail(emailService))
	}

	router.GET("/health", Health(db, emailService))
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
		admins: adminService,
		limits: []*ClientLimiter{limiter, loginLimiter},
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// SeedAdmin makes sure the configured bootstrap admin can log in.
func (s *Server) SeedAdmin(ctx context.Context) error {
	return s.admins.EnsureSeed(ctx, s.config.AdminEmail, s.config.AdminPassword)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	logger.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limits {
		l.Stop()
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
