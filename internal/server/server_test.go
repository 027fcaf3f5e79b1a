package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garageadmin/internal/auth"
	"garageadmin/internal/config"
	"garageadmin/internal/email"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		AdminEmail:     "admin@garage.com",
		AdminPassword:  "admin1234",
	}
	mailer := email.New("noreply@garage.com", "Garage Admin", email.SMTPConfig{Host: "localhost", Port: 1025}, "localhost:0")
	t.Cleanup(func() { mailer.Close() })

	s := New(sqlx.NewDb(db, "sqlmock"), cfg, mailer)
	t.Cleanup(func() {
		for _, l := range s.limits {
			l.Stop()
		}
	})
	return s, mock
}

func adminToken(t *testing.T, role string) string {
	token, err := auth.GenerateToken(1, "admin@garage.com", role, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func serve(s *Server, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	// sqlmock answers pings; the queue points at a closed port
	w := serve(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"up","queue":"down"}}`, w.Body.String())
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/api/admin/allgarages", "/api/admin/garages/pending", "/api/admin/plan", "/api/admin/payments"} {
		w := serve(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := serve(s, http.MethodPost, "/api/send-expiry-email", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/admin/payments", adminToken(t, "viewer"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes_Payments(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/admin/payments?status=completed", adminToken(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalRevenue":8500`)
}

func TestAdminRoutes_PendingQueriesDatabase(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT .* FROM garages WHERE status = \$1`).
		WithArgs("pending_approval").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := serve(s, http.MethodGet, "/api/admin/garages/pending", adminToken(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"garages":[]}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestEmail_Validation(t *testing.T) {
	s, _ := newTestServer(t)

	w := serve(s, http.MethodPost, "/api/admin/test-email?email=nope", adminToken(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	assert.Contains(t, w.Body.String(), "email must be a valid email address")
}

func TestLogin_HasItsOwnLimit(t *testing.T) {
	s, mock := newTestServer(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < loginBurst; i++ {
		mock.ExpectQuery(`SELECT .* FROM admins WHERE email = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	for i := 0; i < loginBurst; i++ {
		w := serveJSON(s, http.MethodPost, "/api/admin/login", `{"email":"x@garage.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := serveJSON(s, http.MethodPost, "/api/admin/login", `{"email":"x@garage.com","password":"nope"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// other routes keep their budget
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/metrics", "").Code)
}

func serveJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestShutdown_BeforeStart(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NoError(t, s.Shutdown(context.Background()))
}
