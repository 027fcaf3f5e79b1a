package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garageadmin/internal/auth"
	"garageadmin/internal/logger"
	"garageadmin/internal/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("email and password are required")
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	EnsureSeed(ctx context.Context, email, password string) error
}

type service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) Service {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		metrics.RecordLogin("rejected")
		return nil, ErrMissingFields
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		auth.CheckUnknownAccount(req.Password)
		metrics.RecordLogin("failure")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if !auth.CheckPassword(a.PasswordHash, req.Password) {
		metrics.RecordLogin("failure")
		logger.Warn("admin login failed", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(a.ID, a.Email, a.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin("success")
	logger.Info("admin logged in", "admin_id", a.ID)
	return &LoginResponse{Token: token, Admin: *a}, nil
}

// EnsureSeed creates the bootstrap admin account when it does not exist yet.
func (s *service) EnsureSeed(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, "Administrator", email, hash, auth.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info("seeded admin account", "email", email)
	return nil
}
