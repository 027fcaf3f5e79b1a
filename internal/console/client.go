package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"garageadmin/internal/admin"
	"garageadmin/internal/api"
	"garageadmin/internal/expiry"
	"garageadmin/internal/garage"
	"garageadmin/internal/payment"
	"garageadmin/internal/plan"
	"garageadmin/internal/report"

	"github.com/google/uuid"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the admin API. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func newAPIError(status int, body []byte) *APIError {
	var e api.ErrorResponse
	msg := http.StatusText(status)
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Message != "":
			msg = e.Message
		case e.Error != "":
			msg = e.Error
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (c *Client) Login(ctx context.Context, email, password string) (*admin.LoginResponse, error) {
	var out admin.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/admin/login", admin.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAllGarages(ctx context.Context) ([]garage.Garage, error) {
	var out garage.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/allgarages", nil, &out); err != nil {
		return nil, err
	}
	return out.Garages, nil
}

func (c *Client) ListPending(ctx context.Context) ([]garage.Garage, error) {
	var out garage.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/garages/pending", nil, &out); err != nil {
		return nil, err
	}
	return out.Garages, nil
}

func (c *Client) Approve(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/api/admin/garages/approve/"+id.String(), garage.ApproveRequest{Status: "approved"}, nil)
}

func (c *Client) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/garages/"+id.String()+"/reject", garage.RejectRequest{Reason: reason}, nil)
}

func (c *Client) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	var out []plan.Plan
	if err := c.do(ctx, http.MethodGet, "/api/admin/plan", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPlan(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	var out plan.Plan
	if err := c.do(ctx, http.MethodGet, "/api/admin/plan/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePlan(ctx context.Context, d plan.Draft) (*plan.Plan, error) {
	var out plan.Plan
	if err := c.do(ctx, http.MethodPost, "/api/admin/plan", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePlan(ctx context.Context, id uuid.UUID, d plan.Draft) (*plan.Plan, error) {
	var out plan.Plan
	if err := c.do(ctx, http.MethodPut, "/api/admin/plan/"+id.String(), d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/plan/"+id.String(), nil, nil)
}

func (c *Client) Expiring(ctx context.Context) ([]expiry.Entry, error) {
	var out expiry.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/expiring", nil, &out); err != nil {
		return nil, err
	}
	return out.Garages, nil
}

func (c *Client) SendExpiryEmail(ctx context.Context, req expiry.SendRequest) error {
	return c.do(ctx, http.MethodPost, "/api/send-expiry-email", req, nil)
}

func (c *Client) Payments(ctx context.Context, status string) (*payment.History, error) {
	path := "/api/admin/payments"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var out payment.History
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	var out report.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
