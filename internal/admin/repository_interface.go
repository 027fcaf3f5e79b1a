package admin

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
