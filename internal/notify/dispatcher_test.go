package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

type emailRecorder struct {
	failFor string
	sent    []gateway.EmailMessage
}

func (r *emailRecorder) ListTickets(context.Context) ([]domain.Ticket, error)   { return nil, nil }
func (r *emailRecorder) ListContacts(context.Context) ([]domain.Contact, error) { return nil, nil }
func (r *emailRecorder) ListUsers(context.Context) ([]domain.User, error)       { return nil, nil }
func (r *emailRecorder) CreateTicket(context.Context, gateway.TicketInput) (*domain.Ticket, error) {
	return nil, nil
}
func (r *emailRecorder) UpdateTicket(context.Context, string, gateway.TicketInput) (*domain.Ticket, error) {
	return nil, nil
}
func (r *emailRecorder) UpdateTicketStatus(context.Context, string, domain.TicketStatus) error {
	return nil
}
func (r *emailRecorder) DeleteTicket(context.Context, string) error { return nil }

func (r *emailRecorder) SendEmail(_ context.Context, msg gateway.EmailMessage) error {
	if msg.To == r.failFor {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

var (
	resolvedTicket = domain.Ticket{ID: "t1", Title: "Printer jam", Status: domain.TicketStatusResolved}
	rejectedTicket = domain.Ticket{ID: "t1", Title: "Printer jam", Status: domain.TicketStatusRejected}
	contact        = &domain.Contact{ID: "c1", Name: "Grace", Email: "grace@acme.example"}
	employeeActor  = domain.User{ID: "u1", Name: "Ben", Role: domain.RoleEmployee}
	adminActor     = domain.User{ID: "u2", Name: "Ava", Role: domain.RoleAdmin}
	adminPool      = []domain.User{
		{ID: "u2", Name: "Ava", Role: domain.RoleAdmin, Email: "ava@example.com"},
		{ID: "u3", Name: "Noah", Role: domain.RoleAdmin},
	}
)

func TestStatusChangeJobsContactAndAdmins(t *testing.T) {
	jobs := StatusChangeJobs(resolvedTicket, contact, employeeActor, adminPool)

	// Contact plus the one admin with an email on file.
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d: %v", len(jobs), jobs)
	}
	if jobs[0].Kind != JobKindContact || jobs[0].To != "grace@acme.example" {
		t.Fatalf("unexpected contact job: %+v", jobs[0])
	}
	if jobs[0].Subject != "Ticket Update: Printer jam is Resolved" {
		t.Fatalf("unexpected subject: %s", jobs[0].Subject)
	}
	if !strings.Contains(jobs[0].Message, "<strong>Printer jam</strong>") {
		t.Fatalf("unexpected body: %s", jobs[0].Message)
	}
	if jobs[1].Kind != JobKindAdmin || jobs[1].To != "ava@example.com" {
		t.Fatalf("unexpected admin job: %+v", jobs[1])
	}
	if !strings.Contains(jobs[1].Message, "Employee <strong>Ben</strong>") {
		t.Fatalf("unexpected admin body: %s", jobs[1].Message)
	}
}

func TestStatusChangeJobsRejectedSkipsAdmins(t *testing.T) {
	jobs := StatusChangeJobs(rejectedTicket, contact, adminActor, adminPool)
	if len(jobs) != 1 || jobs[0].Kind != JobKindContact {
		t.Fatalf("rejection must notify the contact only, got %v", jobs)
	}
}

func TestStatusChangeJobsAdminResolveSkipsAdmins(t *testing.T) {
	jobs := StatusChangeJobs(resolvedTicket, contact, adminActor, adminPool)
	if len(jobs) != 1 || jobs[0].Kind != JobKindContact {
		t.Fatalf("admin resolutions must not ping other admins, got %v", jobs)
	}
}

func TestStatusChangeJobsUnreachableContact(t *testing.T) {
	noEmail := &domain.Contact{ID: "c2", Name: "Marie"}
	if jobs := StatusChangeJobs(resolvedTicket, noEmail, adminActor, nil); jobs != nil {
		t.Fatalf("contact without email must yield no jobs, got %v", jobs)
	}
	if jobs := StatusChangeJobs(resolvedTicket, nil, adminActor, nil); jobs != nil {
		t.Fatalf("unresolvable contact must yield no jobs, got %v", jobs)
	}
}

func TestStatusChangeJobsOtherStages(t *testing.T) {
	open := domain.Ticket{ID: "t1", Title: "x", Status: domain.TicketStatusOpen}
	if jobs := StatusChangeJobs(open, contact, adminActor, adminPool); jobs != nil {
		t.Fatalf("Open must yield no jobs, got %v", jobs)
	}
}

func TestStatusChangeJobsAnonymousEmployee(t *testing.T) {
	anon := domain.User{ID: "u9", Role: domain.RoleEmployee}
	jobs := StatusChangeJobs(resolvedTicket, nil, anon, adminPool)
	if len(jobs) != 1 {
		t.Fatalf("expected the admin job, got %v", jobs)
	}
	if !strings.Contains(jobs[0].Message, "<strong>An Employee</strong>") {
		t.Fatalf("missing fallback actor name: %s", jobs[0].Message)
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	rec := &emailRecorder{failFor: "grace@acme.example"}
	d := NewDispatcher(rec, zap.NewNop())

	jobs := StatusChangeJobs(resolvedTicket, contact, employeeActor, adminPool)
	deliveries := d.Dispatch(context.Background(), jobs)

	if len(deliveries) != 2 {
		t.Fatalf("every job needs an outcome, got %d", len(deliveries))
	}
	if deliveries[0].Err == nil {
		t.Fatal("contact delivery should have failed")
	}
	if !apperrors.HasCode(deliveries[0].Err, "NOTIFICATION_FAILED") {
		t.Fatalf("expected NOTIFICATION_FAILED, got %v", deliveries[0].Err)
	}
	if deliveries[1].Err != nil {
		t.Fatalf("admin delivery must proceed despite the earlier failure: %v", deliveries[1].Err)
	}
	if len(rec.sent) != 1 || rec.sent[0].To != "ava@example.com" {
		t.Fatalf("expected only the admin email to land, got %v", rec.sent)
	}
}
