package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/crm-console/internal/domain"
)

func TestListTicketsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tickets" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("missing bearer token, got %q", got)
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"t1","title":"Login broken","status":"Open","priority":"High"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetToken("tok-123")

	tickets, err := c.ListTickets(context.Background())
	if err != nil {
		t.Fatalf("ListTickets() error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" || tickets[0].Status != domain.TicketStatusOpen {
		t.Fatalf("unexpected decode: %+v", tickets)
	}
}

func TestUpdateTicketStatusSendsStatusOnly(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tickets/t1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"data":{"id":"t1"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.UpdateTicketStatus(context.Background(), "t1", domain.TicketStatusResolved); err != nil {
		t.Fatalf("UpdateTicketStatus() error: %v", err)
	}
	// The drag path patches status alone, nothing else.
	if len(captured) != 1 || captured["status"] != "Resolved" {
		t.Fatalf("unexpected payload: %v", captured)
	}
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":"FORBIDDEN"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ListTickets(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if StatusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%v)", StatusOf(err), err)
	}
}

func TestLoginDecodesSessionMaterial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "ava@example.com" || creds["password"] != "secret" {
			t.Errorf("unexpected credentials: %v", creds)
		}
		_, _ = io.WriteString(w, `{"data":{"token":"tok-9","user":{"id":"u2","name":"Ava","role":"Admin"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Login(context.Background(), "ava@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Token != "tok-9" || res.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected login result: %+v", res)
	}
}

func TestSendEmailPostsSideChannel(t *testing.T) {
	var captured EmailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/notifications/email" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	msg := EmailMessage{To: "grace@acme.example", Subject: "Ticket Update", Message: "body"}
	if err := c.SendEmail(context.Background(), msg); err != nil {
		t.Fatalf("SendEmail() error: %v", err)
	}
	if captured != msg {
		t.Fatalf("payload mismatch: %+v", captured)
	}
}
