package expiry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"garageadmin/internal/garage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGarages struct {
	mock.Mock
}

func (m *MockGarages) ListAll(ctx context.Context) ([]garage.Garage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]garage.Garage), args.Error(1)
}

func (m *MockGarages) Get(ctx context.Context, id uuid.UUID) (*garage.Garage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*garage.Garage), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendHTML(ctx context.Context, to, subject, body, kind string) error {
	return m.Called(ctx, to, subject, body, kind).Error(0)
}

func newTestService(g *MockGarages, m *MockMailer) *service {
	return &service{garages: g, mailer: m, now: func() time.Time { return now }}
}

func TestService_Expiring(t *testing.T) {
	garages := new(MockGarages)
	svc := newTestService(garages, new(MockMailer))

	garages.On("ListAll", mock.Anything).Return([]garage.Garage{
		{Name: "far", SubscriptionEnd: at(31 * 24 * time.Hour)},
		{Name: "warning", SubscriptionEnd: at(30 * 24 * time.Hour)},
		{Name: "none"},
		{Name: "expired", SubscriptionEnd: at(-3 * 24 * time.Hour)},
		{Name: "critical", SubscriptionEnd: at(2 * 24 * time.Hour)},
	}, nil)

	entries, err := svc.Expiring(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "expired", entries[0].Garage.Name)
	assert.Equal(t, BandExpired, entries[0].Band)
	assert.Equal(t, "critical", entries[1].Garage.Name)
	assert.Equal(t, BandCritical, entries[1].Band)
	assert.Equal(t, "warning", entries[2].Garage.Name)
	assert.Equal(t, 30, *entries[2].DaysLeft)
}

func TestService_Expiring_Error(t *testing.T) {
	garages := new(MockGarages)
	svc := newTestService(garages, new(MockMailer))

	garages.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Expiring(context.Background())
	assert.Error(t, err)
}

func TestService_Send(t *testing.T) {
	mailer := new(MockMailer)
	svc := newTestService(new(MockGarages), mailer)

	mailer.On("SendHTML", mock.Anything, "owner@test", "Renew soon", "<p>hi</p>", "expiry_custom").Return(nil)

	err := svc.Send(context.Background(), SendRequest{To: "owner@test", Subject: "Renew soon", HTML: "<p>hi</p>"})
	assert.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestService_Remind(t *testing.T) {
	id := uuid.New()
	end := *at(5 * 24 * time.Hour)
	garages := new(MockGarages)
	mailer := new(MockMailer)
	svc := newTestService(garages, mailer)

	garages.On("Get", mock.Anything, id).Return(&garage.Garage{ID: id, Name: "Pro Mechanics", Email: "pm@test", SubscriptionEnd: &end}, nil)
	mailer.On("SendHTML", mock.Anything, "pm@test", ReminderSubject, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Hi Pro Mechanics,")
	}), "expiry_reminder").Return(nil)

	assert.NoError(t, svc.Remind(context.Background(), id))
	mailer.AssertExpectations(t)
}

func TestService_Remind_NoSubscription(t *testing.T) {
	id := uuid.New()
	garages := new(MockGarages)
	mailer := new(MockMailer)
	svc := newTestService(garages, mailer)

	garages.On("Get", mock.Anything, id).Return(&garage.Garage{ID: id}, nil)

	assert.ErrorIs(t, svc.Remind(context.Background(), id), ErrNoSubscription)
	mailer.AssertNotCalled(t, "SendHTML", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
