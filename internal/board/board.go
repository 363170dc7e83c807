package board

import (
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/crm-console/internal/domain"
)

// RequesterKind classifies how a card's requester was resolved.
type RequesterKind string

const (
	RequesterContact RequesterKind = "contact"
	RequesterGuest   RequesterKind = "guest"
	RequesterNone    RequesterKind = "none"
)

// Badge is the requester label rendered on a card: the contact's name and
// company, the guest's name and email, or a "No Customer" placeholder.
type Badge struct {
	Kind    RequesterKind
	Name    string
	Detail  string
	Initial string
}

// Card is the read-side projection of one ticket for rendering. It holds
// no independent state.
type Card struct {
	Ticket          domain.Ticket
	Requester       Badge
	AssigneeName    string
	AssigneeInitial string
}

// ColumnView is one workflow column with its cards.
type ColumnView struct {
	Column domain.Column
	Cards  []Card
}

// DragEnd carries a finished drag gesture: the moved ticket and the
// destination column. It is forwarded verbatim to the workflow engine's
// Transition.
type DragEnd struct {
	TicketID    string
	Destination domain.TicketStatus
}

// Build partitions tickets into the four fixed columns by status and
// resolves each card's display joins. Column membership is authoritative
// from status, so a ticket lands in exactly one column; tickets with an
// unknown status are dropped from the board entirely.
func Build(tickets []domain.Ticket, contacts []domain.Contact, users []domain.User) []ColumnView {
	contactByID := make(map[string]domain.Contact, len(contacts))
	for _, c := range contacts {
		contactByID[c.ID] = c
	}
	userByID := make(map[string]domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	columns := domain.BoardColumns()
	views := make([]ColumnView, len(columns))
	slot := make(map[domain.TicketStatus]int, len(columns))
	for i, col := range columns {
		views[i] = ColumnView{Column: col}
		slot[col.ID] = i
	}

	for _, t := range tickets {
		i, ok := slot[t.Status]
		if !ok {
			continue
		}
		views[i].Cards = append(views[i].Cards, buildCard(t, contactByID, userByID))
	}
	return views
}

func buildCard(t domain.Ticket, contacts map[string]domain.Contact, users map[string]domain.User) Card {
	card := Card{Ticket: t, Requester: requesterBadge(t, contacts)}
	if u, ok := users[t.AssignedTo]; ok {
		card.AssigneeName = u.Name
		card.AssigneeInitial = strings.ToUpper(firstRune(u.Name))
	}
	return card
}

func requesterBadge(t domain.Ticket, contacts map[string]domain.Contact) Badge {
	if c, ok := contacts[t.CustomerID]; ok && t.CustomerID != "" {
		detail := c.Company
		if detail == "" {
			detail = "Direct"
		}
		return Badge{
			Kind:    RequesterContact,
			Name:    firstWord(c.Name),
			Detail:  detail,
			Initial: firstRune(c.Name),
		}
	}
	if t.GuestEmail != "" {
		name := t.GuestName
		if name == "" {
			name = "Guest"
		}
		initial := firstRune(t.GuestName)
		if initial == "" {
			initial = "G"
		}
		return Badge{
			Kind:    RequesterGuest,
			Name:    name,
			Detail:  t.GuestEmail,
			Initial: initial,
		}
	}
	return Badge{Kind: RequesterNone, Name: "No Customer"}
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}

func firstRune(s string) string {
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
