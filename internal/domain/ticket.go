package domain

import "time"

// TicketStatus enumerates workflow stages. The values double as kanban
// column ids, so they carry the display spelling used by the backend.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusRejected   TicketStatus = "Rejected"
)

// IsValid reports whether s is one of the four workflow stages.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Ticket is the aggregate for support requests. CustomerID references a
// Contact; when it is empty the guest fields identify the requester. Both
// may be absent for orphaned data.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	CustomerID  string         `json:"customerId,omitempty"`
	GuestName   string         `json:"guestName,omitempty"`
	GuestEmail  string         `json:"guestEmail,omitempty"`
	AssignedTo  string         `json:"assignedTo,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
