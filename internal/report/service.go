package report

import (
	"context"
	"fmt"
	"time"

	"garageadmin/internal/expiry"
	"garageadmin/internal/garage"
	"garageadmin/internal/payment"
)

type GarageSource interface {
	ListAll(ctx context.Context) ([]garage.Garage, error)
}

type Dashboard struct {
	Garages         garage.Summary      `json:"garages"`
	Expiry          map[expiry.Band]int `json:"expiry"`
	TotalRevenue    float64             `json:"totalRevenue"`
	PendingPayments int                 `json:"pendingPayments"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

type Service struct {
	garages GarageSource
	ledger  payment.Ledger
	now     func() time.Time
}

func NewService(garages GarageSource, ledger payment.Ledger) *Service {
	return &Service{garages: garages, ledger: ledger, now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	all, err := s.garages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list garages: %w", err)
	}

	payments, err := s.ledger.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	now := s.now()
	d := &Dashboard{
		Garages:      garage.Summarize(all),
		Expiry:       expiry.Count(all, now),
		TotalRevenue: payment.TotalRevenue(payments),
		GeneratedAt:  now,
	}
	for _, p := range payments {
		if p.Status == payment.StatusPending {
			d.PendingPayments++
		}
	}
	return d, nil
}
