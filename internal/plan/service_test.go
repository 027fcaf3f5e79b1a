package plan

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, p *Plan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Create_CoercesInput(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Plan) bool {
		return p.Amount == 0 && p.DurationInMonths == 1 && p.ID != uuid.Nil
	})).Return(nil)

	p, err := svc.Create(context.Background(), Draft{Name: "Trial", Amount: "free", DurationInMonths: "forever"})
	require.NoError(t, err)
	assert.Equal(t, "Trial", p.Name)
	repo.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	id := uuid.New()

	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Plan) bool {
		return p.ID == id && p.Amount == 1499.99 && p.DurationInMonths == 6
	})).Return(nil)

	p, err := svc.Update(context.Background(), id, Draft{Name: "Half year", Amount: "1499.99", DurationInMonths: "6"})
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
}

func TestService_Update_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Update", mock.Anything, mock.Anything).Return(ErrPlanNotFound)

	_, err := svc.Update(context.Background(), uuid.New(), Draft{Name: "x"})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), id))
	repo.AssertExpectations(t)
}
