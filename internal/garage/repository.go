package garage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garageadmin/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const garageColumns = `id, name, email, phone, address, status,
		       subscription_type, subscription_start, subscription_end,
		       payment_amount, payment_method, payment_status, payment_id,
		       rejection_reason, created_at, updated_at`

type garageRow struct {
	ID                uuid.UUID       `db:"id"`
	Name              string          `db:"name"`
	Email             string          `db:"email"`
	Phone             string          `db:"phone"`
	Address           string          `db:"address"`
	Status            Status          `db:"status"`
	SubscriptionType  sql.NullString  `db:"subscription_type"`
	SubscriptionStart sql.NullTime    `db:"subscription_start"`
	SubscriptionEnd   sql.NullTime    `db:"subscription_end"`
	PaymentAmount     sql.NullFloat64 `db:"payment_amount"`
	PaymentMethod     sql.NullString  `db:"payment_method"`
	PaymentStatus     sql.NullString  `db:"payment_status"`
	PaymentID         sql.NullString  `db:"payment_id"`
	RejectionReason   sql.NullString  `db:"rejection_reason"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r garageRow) toGarage() Garage {
	g := Garage{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		Status:           r.Status,
		SubscriptionType: r.SubscriptionType.String,
		RejectionReason:  r.RejectionReason.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.SubscriptionStart.Valid {
		t := r.SubscriptionStart.Time
		g.SubscriptionStart = &t
	}
	if r.SubscriptionEnd.Valid {
		t := r.SubscriptionEnd.Time
		g.SubscriptionEnd = &t
	}
	if r.PaymentMethod.Valid || r.PaymentID.Valid {
		g.PaymentDetails = &PaymentDetails{
			Amount:    r.PaymentAmount.Float64,
			Method:    r.PaymentMethod.String,
			Status:    r.PaymentStatus.String,
			PaymentID: r.PaymentID.String,
		}
	}
	return g
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Garage) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = StatusUnsubscribed
	}

	return r.db.QueryRowxContext(ctx, `
		INSERT INTO garages (id, name, email, phone, address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, g.ID, g.Name, g.Email, g.Phone, g.Address, g.Status).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Garage, error) {
	var row garageRow
	err := r.db.GetContext(ctx, &row, `SELECT `+garageColumns+` FROM garages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGarageNotFound
	}
	if err != nil {
		return nil, err
	}

	g := row.toGarage()
	return &g, nil
}

func (r *repository) List(ctx context.Context) ([]Garage, error) {
	var rows []garageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+garageColumns+` FROM garages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return toGarages(rows), nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Garage, error) {
	var rows []garageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+garageColumns+` FROM garages WHERE status = $1 ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, err
	}
	return toGarages(rows), nil
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, fn func(g *Garage) error) (*Garage, error) {
	var out Garage
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row garageRow
		err := tx.GetContext(ctx, &row, `SELECT `+garageColumns+` FROM garages WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGarageNotFound
		}
		if err != nil {
			return err
		}

		g := row.toGarage()
		if err := fn(&g); err != nil {
			return err
		}

		var pay PaymentDetails
		if g.PaymentDetails != nil {
			pay = *g.PaymentDetails
		}

		err = tx.QueryRowxContext(ctx, `
			UPDATE garages
			SET status = $2,
			    subscription_type = $3,
			    subscription_start = $4,
			    subscription_end = $5,
			    payment_amount = $6,
			    payment_method = $7,
			    payment_status = $8,
			    payment_id = $9,
			    rejection_reason = $10,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`,
			g.ID, g.Status,
			nullString(g.SubscriptionType), g.SubscriptionStart, g.SubscriptionEnd,
			nullFloat(g.PaymentDetails != nil, pay.Amount),
			nullString(pay.Method), nullString(pay.Status), nullString(pay.PaymentID),
			nullString(g.RejectionReason),
		).Scan(&g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update garage %s: %w", id, err)
		}

		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func toGarages(rows []garageRow) []Garage {
	out := make([]Garage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toGarage())
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(valid bool, f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: valid}
}
