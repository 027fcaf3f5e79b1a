package garage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"garageadmin/internal/logger"
	"garageadmin/internal/payment"
	"garageadmin/internal/plan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository.
// Transition applies fn to the garage registered with OnTransition.
type MockRepository struct {
	mock.Mock
	stored *Garage
}

func (m *MockRepository) Create(ctx context.Context, g *Garage) error {
	args := m.Called(ctx, g)
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Garage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Garage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Garage), args.Error(1)
}

func (m *MockRepository) ListByStatus(ctx context.Context, status Status) ([]Garage, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Garage), args.Error(1)
}

func (m *MockRepository) Transition(ctx context.Context, id uuid.UUID, fn func(g *Garage) error) (*Garage, error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	g := *m.stored
	if err := fn(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

type MockPlans struct {
	mock.Mock
}

func (m *MockPlans) Get(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReviewDecision(ctx context.Context, to, garageName string, approved bool, reason string) error {
	args := m.Called(ctx, to, garageName, approved, reason)
	return args.Error(0)
}

func fixedNow() time.Time {
	return time.Date(2025, 4, 17, 10, 0, 0, 0, time.UTC)
}

func newTestService(repo *MockRepository, plans *MockPlans, n Notifier) *service {
	return &service{repo: repo, plans: plans, notifier: n, now: fixedNow}
}

func TestService_SignUp(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(g *Garage) bool {
		return g.Email == "owner@autocare.test" && g.Status == StatusUnsubscribed
	})).Return(nil)

	g, err := svc.SignUp(context.Background(), SignUpRequest{Name: " AutoCare ", Email: "Owner@AutoCare.test"})
	require.NoError(t, err)
	assert.Equal(t, "AutoCare", g.Name)
	repo.AssertExpectations(t)
}

func TestService_Subscribe(t *testing.T) {
	id := uuid.New()
	planID := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Status: StatusUnsubscribed}}
	plans := new(MockPlans)
	svc := newTestService(repo, plans, nil)

	plans.On("Get", mock.Anything, planID).Return(&plan.Plan{
		ID: planID, Name: "Pro", Amount: 2999, SubscriptionType: "quarterly", DurationInMonths: 3,
	}, nil)
	repo.On("Transition", mock.Anything, id).Return(nil)

	g, err := svc.Subscribe(context.Background(), id, SubscribeRequest{PlanID: planID, PaymentMethod: "UPI"})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, g.Status)
	assert.Equal(t, "quarterly", g.SubscriptionType)
	assert.Equal(t, fixedNow().AddDate(0, 3, 0), *g.SubscriptionEnd)
	require.NotNil(t, g.PaymentDetails)
	assert.Equal(t, 2999.0, g.PaymentDetails.Amount)
	assert.Regexp(t, `^TXN[0-9A-F]{12}$`, g.PaymentDetails.PaymentID)
}

func TestService_Subscribe_RecordsPayment(t *testing.T) {
	id := uuid.New()
	planID := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Name: "Elite Auto", Status: StatusUnsubscribed}}
	plans := new(MockPlans)
	ledger := payment.NewMemoryLedger()
	svc := newTestService(repo, plans, nil)
	svc.payments = ledger

	plans.On("Get", mock.Anything, planID).Return(&plan.Plan{ID: planID, Amount: 999, DurationInMonths: 1}, nil)
	repo.On("Transition", mock.Anything, id).Return(nil)

	_, err := svc.Subscribe(context.Background(), id, SubscribeRequest{PlanID: planID, PaymentMethod: "Card", PaymentID: "TXN42"})
	require.NoError(t, err)

	recorded, err := ledger.List(context.Background(), payment.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "Elite Auto", recorded[0].Garage)
	assert.Equal(t, "TXN42", recorded[0].TransactionID)
	assert.Equal(t, 999.0, recorded[0].Amount)
}

func TestService_Subscribe_UnknownPlan(t *testing.T) {
	plans := new(MockPlans)
	svc := newTestService(new(MockRepository), plans, nil)

	plans.On("Get", mock.Anything, mock.Anything).Return(nil, plan.ErrPlanNotFound)

	_, err := svc.Subscribe(context.Background(), uuid.New(), SubscribeRequest{PlanID: uuid.New(), PaymentMethod: "UPI"})
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestService_Approve_Notifies(t *testing.T) {
	id := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Name: "Quick Fix", Email: "qf@test", Status: StatusPendingApproval}}
	n := new(MockNotifier)
	svc := newTestService(repo, nil, n)

	repo.On("Transition", mock.Anything, id).Return(nil)
	n.On("SendReviewDecision", mock.Anything, "qf@test", "Quick Fix", true, "").Return(nil)

	g, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, g.Status)
	n.AssertExpectations(t)
}

func TestService_ReviewDecisionsLeaveLoggingToHandler(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, slog.LevelDebug)
	defer logger.SetOutput(io.Discard, slog.LevelInfo)

	approveID, rejectID := uuid.New(), uuid.New()
	approveRepo := &MockRepository{stored: &Garage{ID: approveID, Status: StatusPendingApproval}}
	approveRepo.On("Transition", mock.Anything, approveID).Return(nil)
	rejectRepo := &MockRepository{stored: &Garage{ID: rejectID, Status: StatusPendingApproval}}
	rejectRepo.On("Transition", mock.Anything, rejectID).Return(nil)

	_, err := newTestService(approveRepo, nil, nil).Approve(context.Background(), approveID)
	require.NoError(t, err)
	_, err = newTestService(rejectRepo, nil, nil).Reject(context.Background(), rejectID, "no licence")
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "garage approved")
	assert.NotContains(t, buf.String(), "garage rejected")
}

func TestService_Approve_NotificationFailureIgnored(t *testing.T) {
	id := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Email: "qf@test", Status: StatusPendingApproval}}
	n := new(MockNotifier)
	svc := newTestService(repo, nil, n)

	repo.On("Transition", mock.Anything, id).Return(nil)
	n.On("SendReviewDecision", mock.Anything, mock.Anything, mock.Anything, true, "").Return(errors.New("redis down"))

	_, err := svc.Approve(context.Background(), id)
	assert.NoError(t, err)
}

func TestService_Approve_InvalidTransition(t *testing.T) {
	id := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Status: StatusActive}}
	svc := newTestService(repo, nil, nil)

	repo.On("Transition", mock.Anything, id).Return(nil)

	_, err := svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Reject(t *testing.T) {
	id := uuid.New()
	repo := &MockRepository{stored: &Garage{ID: id, Name: "Elite", Email: "e@test", Status: StatusPendingApproval}}
	n := new(MockNotifier)
	svc := newTestService(repo, nil, n)

	repo.On("Transition", mock.Anything, id).Return(nil)
	n.On("SendReviewDecision", mock.Anything, "e@test", "Elite", false, "invalid payment").Return(nil)

	g, err := svc.Reject(context.Background(), id, " invalid payment ")
	require.NoError(t, err)
	assert.Equal(t, StatusUnsubscribed, g.Status)
	assert.Equal(t, "invalid payment", g.RejectionReason)
	n.AssertExpectations(t)
}

func TestService_Reject_EmptyReason(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	_, err := svc.Reject(context.Background(), uuid.New(), "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)
	repo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything)
}

func TestService_Reject_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	repo.On("Transition", mock.Anything, id).Return(ErrGarageNotFound)

	_, err := svc.Reject(context.Background(), id, "reason")
	assert.ErrorIs(t, err, ErrGarageNotFound)
}

func TestService_ListPending(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	repo.On("ListByStatus", mock.Anything, StatusPendingApproval).Return([]Garage{{Name: "a"}}, nil)

	garages, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, garages, 1)
	repo.AssertExpectations(t)
}

func TestService_Renew(t *testing.T) {
	id := uuid.New()

	t.Run("extends from current end", func(t *testing.T) {
		end := fixedNow().AddDate(0, 0, 10)
		repo := &MockRepository{stored: &Garage{ID: id, Status: StatusActive, SubscriptionEnd: &end}}
		svc := newTestService(repo, nil, nil)
		repo.On("Transition", mock.Anything, id).Return(nil)

		g, err := svc.Renew(context.Background(), id, 2)
		require.NoError(t, err)
		assert.Equal(t, end.AddDate(0, 2, 0), *g.SubscriptionEnd)
	})

	t.Run("lapsed subscription counts from now", func(t *testing.T) {
		end := fixedNow().AddDate(0, 0, -5)
		repo := &MockRepository{stored: &Garage{ID: id, Status: StatusActive, SubscriptionEnd: &end}}
		svc := newTestService(repo, nil, nil)
		repo.On("Transition", mock.Anything, id).Return(nil)

		g, err := svc.Renew(context.Background(), id, 0)
		require.NoError(t, err)
		assert.Equal(t, fixedNow().AddDate(0, 1, 0), *g.SubscriptionEnd)
	})
}
