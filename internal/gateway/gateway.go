package gateway

import (
	"context"

	"github.com/spec-kit/crm-console/internal/domain"
)

// TicketInput is the mutation payload for ticket create/update calls.
type TicketInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CustomerID  string                `json:"customerId"`
	AssignedTo  string                `json:"assignedTo"`
	GuestName   string                `json:"guestName,omitempty"`
	GuestEmail  string                `json:"guestEmail,omitempty"`
}

// EmailMessage is the payload for the fire-and-forget email side channel.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Gateway is the remote data access surface the workflow engine and the
// notification dispatcher depend on. Retry and caching policy live behind
// this boundary.
type Gateway interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	CreateTicket(ctx context.Context, input TicketInput) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, input TicketInput) (*domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error
	DeleteTicket(ctx context.Context, id string) error

	SendEmail(ctx context.Context, msg EmailMessage) error
}
