package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spec-kit/crm-console/internal/domain"
)

// APIError describes a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Body)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client talks to the REST backend over HTTP with bearer-token auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient builds a gateway client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SetToken attaches the session token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) request(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListTickets fetches the full ticket collection.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var out struct {
		Data []domain.Ticket `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/tickets", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListContacts fetches the contact collection.
func (c *Client) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	var out struct {
		Data []domain.Contact `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListUsers fetches the operator accounts.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out struct {
		Data []domain.User `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/auth/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateTicket persists a new ticket.
func (c *Client) CreateTicket(ctx context.Context, input TicketInput) (*domain.Ticket, error) {
	var out struct {
		Data domain.Ticket `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/api/tickets", input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateTicket replaces a ticket's editable fields.
func (c *Client) UpdateTicket(ctx context.Context, id string, input TicketInput) (*domain.Ticket, error) {
	var out struct {
		Data domain.Ticket `json:"data"`
	}
	if err := c.request(ctx, http.MethodPut, "/api/tickets/"+id, input, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateTicketStatus persists a drag-driven status transition.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	in := map[string]domain.TicketStatus{"status": status}
	return c.request(ctx, http.MethodPut, "/api/tickets/"+id, in, nil)
}

// DeleteTicket removes a ticket permanently.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/api/tickets/"+id, nil, nil)
}

// SendEmail posts to the notification side channel. The response body is
// ignored beyond error mapping.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	return c.request(ctx, http.MethodPost, "/api/notifications/email", msg, nil)
}

// LoginResult carries the session material returned by the backend.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Data LoginResult `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CheckIn records attendance for the given user.
func (c *Client) CheckIn(ctx context.Context, userID string) error {
	in := map[string]string{"userId": userID}
	return c.request(ctx, http.MethodPost, "/api/attendance/check-in", in, nil)
}

// CheckOut closes the attendance record for the given user.
func (c *Client) CheckOut(ctx context.Context, userID string) error {
	in := map[string]string{"userId": userID}
	return c.request(ctx, http.MethodPost, "/api/attendance/check-out", in, nil)
}
