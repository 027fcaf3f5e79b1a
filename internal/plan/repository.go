package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const planColumns = `id, name, price, amount, subscription_type, duration_in_months, features, popular, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, `SELECT `+planColumns+` FROM plans ORDER BY amount ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var p Plan
	err := r.db.GetContext(ctx, &p, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Features == nil {
		p.Features = []string{}
	}

	return r.db.QueryRowxContext(ctx, `
		INSERT INTO plans (id, name, price, amount, subscription_type, duration_in_months, features, popular)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Price, p.Amount, p.SubscriptionType, p.DurationInMonths, p.Features, p.Popular).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update replaces every editable column of the plan.
func (r *repository) Update(ctx context.Context, p *Plan) error {
	if p.Features == nil {
		p.Features = []string{}
	}

	err := r.db.QueryRowxContext(ctx, `
		UPDATE plans
		SET name = $2,
		    price = $3,
		    amount = $4,
		    subscription_type = $5,
		    duration_in_months = $6,
		    features = $7,
		    popular = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Price, p.Amount, p.SubscriptionType, p.DurationInMonths, p.Features, p.Popular).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlanNotFound
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}
