package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crm-console/internal/auth"
	"github.com/spec-kit/crm-console/internal/domain"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// Store is the dev backend's in-memory persistence. It exists so the HTTP
// contract has an executable definition; the real backend's engine is out
// of scope.
type Store struct {
	mu        sync.RWMutex
	tickets   map[string]domain.Ticket
	contacts  []domain.Contact
	users     []domain.User
	passwords map[string]string
	checkedIn map[string]bool
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		tickets:   make(map[string]domain.Ticket),
		passwords: make(map[string]string),
		checkedIn: make(map[string]bool),
	}
}

// Seed loads a small fixture set: one user per role that matters to the
// board, a few contacts, and a handful of tickets. Every seeded account
// uses the password "password123".
func (s *Store) Seed(bcryptCost int) error {
	hash, err := auth.HashPassword("password123", bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = []domain.User{
		{ID: "u-admin", Name: "Ava Torres", Role: domain.RoleAdmin, Email: "ava@example.com"},
		{ID: "u-employee", Name: "Ben Okafor", Role: domain.RoleEmployee, Email: "ben@example.com"},
		{ID: "u-sales", Name: "Cara Lindqvist", Role: domain.RoleSales, Email: "cara@example.com"},
		{ID: "u-client", Name: "Dana Whitfield", Role: domain.RoleClient},
	}
	for _, u := range s.users {
		s.passwords[u.ID] = hash
	}

	s.contacts = []domain.Contact{
		{ID: "c-1", Name: "Grace Hopper", Company: "Acme Corp", Email: "grace@acme.example"},
		{ID: "c-2", Name: "Linus Pauling", Email: "linus@example.org"},
		{ID: "c-3", Name: "Marie Curie", Company: "Radium Ltd"},
	}

	now := time.Now()
	seedTickets := []domain.Ticket{
		{ID: "t-1", Title: "Login page error", Description: "500 on submit", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, CustomerID: "c-1", AssignedTo: "u-employee", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "t-2", Title: "Invoice totals off by one", Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusInProgress, CustomerID: "c-2", AssignedTo: "u-employee", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "t-3", Title: "Feature request: dark mode", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusOpen, GuestName: "Sam", GuestEmail: "sam@guest.example", CreatedAt: now.Add(-24 * time.Hour)},
	}
	for _, t := range seedTickets {
		s.tickets[t.ID] = t
	}
	return nil
}

// ListTickets returns tickets ordered by creation time.
func (s *Store) ListTickets() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetTicket returns one ticket.
func (s *Store) GetTicket(id string) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return t, nil
}

// CreateTicket assigns identity and stores the ticket.
func (s *Store) CreateTicket(t domain.Ticket) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	s.tickets[t.ID] = t
	return t
}

// SaveTicket replaces an existing ticket.
func (s *Store) SaveTicket(t domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": t.ID})
	}
	s.tickets[t.ID] = t
	return nil
}

// DeleteTicket removes a ticket permanently.
func (s *Store) DeleteTicket(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	delete(s.tickets, id)
	return nil
}

// ListContacts returns the contact collection.
func (s *Store) ListContacts() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Contact(nil), s.contacts...)
}

// ListUsers returns the operator accounts.
func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// FindUserByEmail resolves a login identity with its password hash.
func (s *Store) FindUserByEmail(email string) (domain.User, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, s.passwords[u.ID], true
		}
	}
	return domain.User{}, "", false
}

// CheckIn opens an attendance record. A second check-in for the same user
// is a 400, which the console treats as benign.
func (s *Store) CheckIn(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkedIn[userID] {
		return apperrors.NewValidationError("already checked in", map[string]any{"userId": userID})
	}
	s.checkedIn[userID] = true
	return nil
}

// CheckOut closes the attendance record.
func (s *Store) CheckOut(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkedIn, userID)
	return nil
}
