package domain

// Column is one fixed workflow stage on the board. Columns are static
// configuration, never persisted.
type Column struct {
	ID    TicketStatus
	Title string
	Color string
}

// BoardColumns returns the four workflow columns in board order.
func BoardColumns() []Column {
	return []Column{
		{ID: TicketStatusOpen, Title: "Open", Color: "#3b82f6"},
		{ID: TicketStatusInProgress, Title: "In Progress", Color: "#eab308"},
		{ID: TicketStatusResolved, Title: "Resolved", Color: "#22c55e"},
		{ID: TicketStatusRejected, Title: "Rejected", Color: "#ef4444"},
	}
}
