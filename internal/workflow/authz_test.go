package workflow

import (
	"testing"

	"github.com/spec-kit/crm-console/internal/domain"
)

func TestCanSetStatusMatrix(t *testing.T) {
	allRoles := []domain.Role{
		domain.RoleAdmin, domain.RoleEmployee, domain.RoleSales, domain.RoleHR, domain.RoleClient,
	}

	// Open and In Progress are unrestricted.
	for _, role := range allRoles {
		if !CanSetStatus(role, domain.TicketStatusOpen) {
			t.Errorf("role %s should reach Open", role)
		}
		if !CanSetStatus(role, domain.TicketStatusInProgress) {
			t.Errorf("role %s should reach In Progress", role)
		}
	}

	for _, role := range allRoles {
		gotResolved := CanSetStatus(role, domain.TicketStatusResolved)
		wantResolved := role == domain.RoleAdmin || role == domain.RoleEmployee
		if gotResolved != wantResolved {
			t.Errorf("Resolved for %s: got %v, want %v", role, gotResolved, wantResolved)
		}

		gotRejected := CanSetStatus(role, domain.TicketStatusRejected)
		wantRejected := role == domain.RoleAdmin
		if gotRejected != wantRejected {
			t.Errorf("Rejected for %s: got %v, want %v", role, gotRejected, wantRejected)
		}
	}
}

func TestDenialMessages(t *testing.T) {
	if got := DenialMessage(domain.TicketStatusRejected); got != "Only Admins can reject tickets" {
		t.Fatalf("unexpected rejection message: %q", got)
	}
	if got := DenialMessage(domain.TicketStatusResolved); got != "Only Admins and Employees can resolve tickets" {
		t.Fatalf("unexpected resolve message: %q", got)
	}
}
