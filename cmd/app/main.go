package main

import (
	"context"
	"log/slog"

	"garageadmin/internal/config"
	"garageadmin/internal/db"
	"garageadmin/internal/email"
	"garageadmin/internal/logger"
	"garageadmin/internal/server"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// @title Garage Admin API
// @version 1.0
// @description Admin API for the garage management platform.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting Garage Admin API")

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default()}
		}),
		fx.Provide(
			config.Load,
			provideDB,
			provideEmail,
			server.New,
		),
		fx.Invoke(
			runMigrations,
			seedAdmin,
			startEmailWorker,
			startServer,
		),
	)
	if err := app.Err(); err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}

	app.Run()
}

func provideDB(lc fx.Lifecycle, cfg *config.Config) (*sqlx.DB, error) {
	logger.Info("Connecting to database...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close()
		},
	})
	return database, nil
}

func provideEmail(lc fx.Lifecycle, cfg *config.Config) *email.Service {
	svc := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
		},
		cfg.RedisAddr,
	)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close()
		},
	})
	return svc
}

func runMigrations(database *sqlx.DB, cfg *config.Config) error {
	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		return err
	}
	logger.Info("Migrations completed")
	return nil
}

func seedAdmin(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.SeedAdmin(ctx)
		},
	})
}

func startEmailWorker(lc fx.Lifecycle, svc *email.Service) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := svc.Ping(startCtx); err != nil {
				logger.Warn("redis unreachable, emails will queue once it is back", "error", err)
			}
			go svc.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Errorf("Server error: %v", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down gracefully...")
			return srv.Shutdown(ctx)
		},
	})
}
