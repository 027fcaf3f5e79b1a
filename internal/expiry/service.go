package expiry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"garageadmin/internal/garage"
	"garageadmin/internal/logger"
	"garageadmin/internal/metrics"

	"github.com/google/uuid"
)

type GarageSource interface {
	ListAll(ctx context.Context) ([]garage.Garage, error)
	Get(ctx context.Context, id uuid.UUID) (*garage.Garage, error)
}

type Mailer interface {
	SendHTML(ctx context.Context, to, subject, body, kind string) error
}

type Service interface {
	Expiring(ctx context.Context) ([]Entry, error)
	Counts(ctx context.Context) (map[Band]int, error)
	Send(ctx context.Context, req SendRequest) error
	Remind(ctx context.Context, id uuid.UUID) error
}

type service struct {
	garages GarageSource
	mailer  Mailer
	now     func() time.Time
}

func NewService(garages GarageSource, mailer Mailer) Service {
	return &service{garages: garages, mailer: mailer, now: time.Now}
}

// Expiring lists garages whose subscription ends within Window days, already
// expired ones included, soonest first.
func (s *service) Expiring(ctx context.Context) ([]Entry, error) {
	all, err := s.garages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list garages: %w", err)
	}

	now := s.now()
	out := make([]Entry, 0)
	for _, g := range all {
		e := Annotate(g, now)
		if e.DaysLeft != nil && *e.DaysLeft <= Window {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DaysLeft < *out[j].DaysLeft
	})

	for band, n := range Count(all, now) {
		metrics.SetExpiringGarages(string(band), n)
	}
	return out, nil
}

func (s *service) Counts(ctx context.Context) (map[Band]int, error) {
	all, err := s.garages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list garages: %w", err)
	}
	return Count(all, s.now()), nil
}

func (s *service) Send(ctx context.Context, req SendRequest) error {
	if err := s.mailer.SendHTML(ctx, req.To, req.Subject, req.HTML, "expiry_custom"); err != nil {
		return fmt.Errorf("queue expiry email: %w", err)
	}
	logger.Info("expiry email queued", "to", req.To)
	return nil
}

func (s *service) Remind(ctx context.Context, id uuid.UUID) error {
	g, err := s.garages.Get(ctx, id)
	if err != nil {
		return err
	}
	if g.SubscriptionEnd == nil {
		return ErrNoSubscription
	}

	if err := s.mailer.SendHTML(ctx, g.Email, ReminderSubject, ReminderHTML(g.Name), "expiry_reminder"); err != nil {
		return fmt.Errorf("queue reminder for %s: %w", id, err)
	}
	logger.Info("expiry reminder queued", "garage_id", id.String(), "to", g.Email)
	return nil
}
