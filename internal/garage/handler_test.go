package garage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"garageadmin/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SignUp(ctx context.Context, req SignUpRequest) (*Garage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockService) Subscribe(ctx context.Context, id uuid.UUID, req SubscribeRequest) (*Garage, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id uuid.UUID) (*Garage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context) ([]Garage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Garage), args.Error(1)
}

func (m *MockService) ListPending(ctx context.Context) ([]Garage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Garage), args.Error(1)
}

func (m *MockService) Approve(ctx context.Context, id uuid.UUID) (*Garage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, id uuid.UUID, reason string) (*Garage, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func (m *MockService) Renew(ctx context.Context, id uuid.UUID, months int) (*Garage, error) {
	args := m.Called(ctx, id, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Garage), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.POST("/api/garages", h.SignUp)
	r.POST("/api/garages/:id/subscribe", h.Subscribe)
	r.GET("/api/admin/allgarages", h.ListAll)
	r.GET("/api/admin/garages/pending", h.ListPending)
	r.GET("/api/admin/garages/:id", h.Get)
	r.PUT("/api/admin/garages/approve/:id", h.Approve)
	r.POST("/api/admin/garages/:id/reject", h.Reject)
	r.POST("/api/admin/garages/:id/renew", h.Renew)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ListPending(t *testing.T) {
	svc := new(MockService)
	svc.On("ListPending", mock.Anything).Return([]Garage{
		{ID: uuid.New(), Name: "AutoCare Plus", Status: StatusPendingApproval},
	}, nil)

	w := do(setupRouter(svc), http.MethodGet, "/api/admin/garages/pending", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Garages []map[string]any `json:"garages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Garages, 1)
	assert.Equal(t, true, resp.Garages[0]["isSubscribed"])
	assert.Equal(t, false, resp.Garages[0]["approved"])
}

func TestHandler_ListAll_Error(t *testing.T) {
	svc := new(MockService)
	svc.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	w := do(setupRouter(svc), http.MethodGet, "/api/admin/allgarages", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch garages")
}

func TestHandler_Approve(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Approve", mock.Anything, id).Return(&Garage{ID: id, Status: StatusActive}, nil)

	w := do(setupRouter(svc), http.MethodPut, "/api/admin/garages/approve/"+id.String(), `{"status":"approved"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":true`)
}

func TestHandler_ReviewDecisionsLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, slog.LevelInfo)
	defer logger.SetOutput(io.Discard, slog.LevelInfo)

	approveID, rejectID := uuid.New(), uuid.New()
	svc := new(MockService)
	svc.On("Approve", mock.Anything, approveID).Return(&Garage{ID: approveID, Status: StatusActive}, nil)
	svc.On("Reject", mock.Anything, rejectID, "no licence").
		Return(&Garage{ID: rejectID, Status: StatusUnsubscribed, RejectionReason: "no licence"}, nil)

	r := setupRouter(svc)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/admin/garages/approve/"+approveID.String(), "").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/admin/garages/"+rejectID.String()+"/reject", `{"reason":"no licence"}`).Code)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `"msg":"garage approved"`))
	assert.Equal(t, 1, strings.Count(out, `"msg":"garage rejected"`))
	assert.Contains(t, out, `"garage_id":"`+approveID.String()+`"`)
	assert.Contains(t, out, `"reviewer":`)
}

func TestHandler_Approve_Errors(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", ErrGarageNotFound, http.StatusNotFound},
		{"already active", ErrInvalidTransition, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Approve", mock.Anything, id).Return(nil, tt.err)

			w := do(setupRouter(svc), http.MethodPut, "/api/admin/garages/approve/"+id.String(), "")
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandler_Approve_BadID(t *testing.T) {
	svc := new(MockService)

	w := do(setupRouter(svc), http.MethodPut, "/api/admin/garages/approve/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid garage ID")
	svc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestHandler_Reject(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Reject", mock.Anything, id, "bad documents").
		Return(&Garage{ID: id, Status: StatusUnsubscribed, RejectionReason: "bad documents"}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/garages/"+id.String()+"/reject", `{"reason":"bad documents"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bad documents")
}

func TestHandler_Reject_EmptyReason(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Reject", mock.Anything, id, "").Return(nil, ErrReasonRequired)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/garages/"+id.String()+"/reject", `{"reason":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SignUp_Validation(t *testing.T) {
	svc := new(MockService)

	w := do(setupRouter(svc), http.MethodPost, "/api/garages", `{"name":"x","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
}

func TestHandler_Subscribe(t *testing.T) {
	id := uuid.New()
	planID := uuid.New()
	svc := new(MockService)
	req := SubscribeRequest{PlanID: planID, PaymentMethod: "UPI"}
	svc.On("Subscribe", mock.Anything, id, req).Return(&Garage{ID: id, Status: StatusPendingApproval}, nil)

	body := `{"planId":"` + planID.String() + `","paymentMethod":"UPI"}`
	w := do(setupRouter(svc), http.MethodPost, "/api/garages/"+id.String()+"/subscribe", body)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Renew(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Renew", mock.Anything, id, 6).Return(&Garage{ID: id, Status: StatusActive}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/garages/"+id.String()+"/renew", `{"months":6}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Renew_EmptyBodyUsesDefault(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Renew", mock.Anything, id, 0).Return(&Garage{ID: id, Status: StatusActive}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/garages/"+id.String()+"/renew", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Renew_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"months as text", `{"months":"twelve"}`},
		{"broken json", `{"months":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			svc := new(MockService)

			w := do(setupRouter(svc), http.MethodPost, "/api/admin/garages/"+id.String()+"/renew", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Renew", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
