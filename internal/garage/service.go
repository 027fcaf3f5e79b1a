package garage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garageadmin/internal/logger"
	"garageadmin/internal/metrics"
	"garageadmin/internal/payment"
	"garageadmin/internal/plan"

	"github.com/google/uuid"
)

// PlanLookup is the slice of the plan service a subscription needs.
type PlanLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
}

// Notifier tells the garage owner about a review decision. Delivery failures never fail the review.
type Notifier interface {
	SendReviewDecision(ctx context.Context, to, garageName string, approved bool, reason string) error
}

// PaymentSink receives the payment taken when a garage subscribes.
type PaymentSink interface {
	Record(ctx context.Context, p payment.Payment) (payment.Payment, error)
}

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Garage, error)
	Subscribe(ctx context.Context, id uuid.UUID, req SubscribeRequest) (*Garage, error)
	Get(ctx context.Context, id uuid.UUID) (*Garage, error)
	ListAll(ctx context.Context) ([]Garage, error)
	ListPending(ctx context.Context) ([]Garage, error)
	Approve(ctx context.Context, id uuid.UUID) (*Garage, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*Garage, error)
	Renew(ctx context.Context, id uuid.UUID, months int) (*Garage, error)
}

type service struct {
	repo     Repository
	plans    PlanLookup
	notifier Notifier
	payments PaymentSink
	now      func() time.Time
}

// NewService builds the garage service. notifier and payments may be nil.
func NewService(repo Repository, plans PlanLookup, notifier Notifier, payments PaymentSink) Service {
	return &service{
		repo:     repo,
		plans:    plans,
		notifier: notifier,
		payments: payments,
		now:      time.Now,
	}
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*Garage, error) {
	g := &Garage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Address: req.Address,
		Status:  StatusUnsubscribed,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create garage: %w", err)
	}

	metrics.RecordSignup()
	logger.Info("garage signed up", "garage_id", g.ID.String(), "email", g.Email)
	return g, nil
}

func (s *service) Subscribe(ctx context.Context, id uuid.UUID, req SubscribeRequest) (*Garage, error) {
	p, err := s.plans.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}

	start := s.now()
	sub := Subscription{
		Type:  p.SubscriptionType,
		Start: start,
		End:   start.AddDate(0, p.DurationInMonths, 0),
		Payment: &PaymentDetails{
			Amount:    p.Amount,
			Method:    req.PaymentMethod,
			Status:    "paid",
			PaymentID: paymentID,
		},
	}

	g, err := s.repo.Transition(ctx, id, func(g *Garage) error {
		return g.Subscribe(sub)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionRequest(p.SubscriptionType)
	logger.Info("garage subscription requested", "garage_id", id.String(), "plan", p.Name)

	if s.payments != nil {
		_, err := s.payments.Record(ctx, payment.Payment{
			Garage:        g.Name,
			Amount:        sub.Payment.Amount,
			Date:          start,
			Method:        sub.Payment.Method,
			Status:        payment.StatusCompleted,
			TransactionID: sub.Payment.PaymentID,
		})
		if err != nil {
			logger.Warn("subscription payment not recorded", "garage_id", id.String(), "error", err)
		}
	}
	return g, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Garage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]Garage, error) {
	return s.repo.List(ctx)
}

func (s *service) ListPending(ctx context.Context) ([]Garage, error) {
	return s.repo.ListByStatus(ctx, StatusPendingApproval)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*Garage, error) {
	g, err := s.repo.Transition(ctx, id, func(g *Garage) error {
		return g.Approve()
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReview("approved")
	s.notify(ctx, g, true, "")
	return g, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Garage, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	g, err := s.repo.Transition(ctx, id, func(g *Garage) error {
		return g.Reject(reason)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReview("rejected")
	s.notify(ctx, g, false, g.RejectionReason)
	return g, nil
}

// Renew extends an active subscription by months, counted from the current end
// or from now when the subscription has already lapsed.
func (s *service) Renew(ctx context.Context, id uuid.UUID, months int) (*Garage, error) {
	if months < 1 {
		months = 1
	}

	now := s.now()
	return s.repo.Transition(ctx, id, func(g *Garage) error {
		from := now
		if g.SubscriptionEnd != nil && g.SubscriptionEnd.After(now) {
			from = *g.SubscriptionEnd
		}
		return g.Renew(from.AddDate(0, months, 0))
	})
}

func (s *service) notify(ctx context.Context, g *Garage, approved bool, reason string) {
	if s.notifier == nil || g.Email == "" {
		return
	}
	if err := s.notifier.SendReviewDecision(ctx, g.Email, g.Name, approved, reason); err != nil {
		logger.Warn("review notification not queued", "garage_id", g.ID.String(), "error", err)
	}
}
