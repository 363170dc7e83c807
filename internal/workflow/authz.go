package workflow

import "github.com/spec-kit/crm-console/internal/domain"

// statusGrants is the authorization matrix: roles permitted to move a
// ticket into a restricted stage. Stages without an entry are open to
// every role. The matrix is evaluated against the target stage only,
// independent of the ticket's current stage, and is shared by the drag
// and form-submission paths.
//
// This check runs in the client layer only. The backend must enforce the
// same rules independently; this is a UX guard, not a security boundary.
var statusGrants = map[domain.TicketStatus][]domain.Role{
	domain.TicketStatusResolved: {domain.RoleAdmin, domain.RoleEmployee},
	domain.TicketStatusRejected: {domain.RoleAdmin},
}

// CanSetStatus reports whether role may move a ticket into target.
func CanSetStatus(role domain.Role, target domain.TicketStatus) bool {
	allowed, restricted := statusGrants[target]
	if !restricted {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// DenialMessage returns the user-facing alert for a denied target stage.
func DenialMessage(target domain.TicketStatus) string {
	switch target {
	case domain.TicketStatusRejected:
		return "Only Admins can reject tickets"
	case domain.TicketStatusResolved:
		return "Only Admins and Employees can resolve tickets"
	}
	return "insufficient permissions for this status"
}
