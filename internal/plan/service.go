package plan

import (
	"context"
	"fmt"

	"garageadmin/internal/logger"
	"garageadmin/internal/metrics"

	"github.com/google/uuid"
)

type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id uuid.UUID) (*Plan, error)
	Create(ctx context.Context, d Draft) (*Plan, error)
	Update(ctx context.Context, id uuid.UUID, d Draft) (*Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Plan, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, d Draft) (*Plan, error) {
	p := d.Plan(uuid.New())
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	metrics.RecordPlanChange("create")
	logger.Info("plan created", "plan_id", p.ID.String(), "name", p.Name, "amount", p.Amount)
	return &p, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, d Draft) (*Plan, error) {
	p := d.Plan(id)
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, err
	}

	metrics.RecordPlanChange("update")
	logger.Info("plan updated", "plan_id", id.String())
	return &p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.RecordPlanChange("delete")
	logger.Info("plan deleted", "plan_id", id.String())
	return nil
}
