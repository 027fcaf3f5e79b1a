package admin

import (
	"context"
	"database/sql"
	"errors"

	"garageadmin/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrAdminNotFound = errors.New("admin not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string) (*Admin, error) {
	query := `
		INSERT INTO admins (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at
	`

	var a Admin
	if err := r.db.GetContext(ctx, &a, query, name, email, passwordHash, role); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM admins
		WHERE email = $1
	`

	var a Admin
	err := r.db.GetContext(ctx, &a, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, email)
}
