package garage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, g *Garage) error
	GetByID(ctx context.Context, id uuid.UUID) (*Garage, error)
	List(ctx context.Context) ([]Garage, error)
	ListByStatus(ctx context.Context, status Status) ([]Garage, error)
	// Transition loads the garage under a row lock, applies fn and persists the result.
	Transition(ctx context.Context, id uuid.UUID, fn func(g *Garage) error) (*Garage, error)
}
