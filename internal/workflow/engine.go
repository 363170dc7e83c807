package workflow

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
	"github.com/spec-kit/crm-console/internal/notify"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// Engine holds the transient ticket/contact/user collections and drives
// the status-transition state machine. It is the only writer of the
// collections; the board and form layers read projections of them.
//
// Transitions serialize per ticket id. Transitions on different tickets
// may still race: a rollback restores the full-collection snapshot taken
// before its own optimistic update, so across tickets the behavior is
// last-write-wins.
type Engine struct {
	gateway  gateway.Gateway
	notifier *notify.Dispatcher
	logger   *zap.Logger

	mu       sync.Mutex
	tickets  []domain.Ticket
	contacts []domain.Contact
	users    []domain.User

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEngine constructs the workflow engine. The actor is passed per call,
// never read from ambient state.
func NewEngine(gw gateway.Gateway, notifier *notify.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// LoadAll fetches tickets, contacts, and users concurrently and waits for
// joint completion. Any failure discards all partial results and leaves
// the collections empty.
//
// Employees see only tickets assigned to them. This filter is a read-time
// projection over the unfiltered response; the backend must enforce the
// same restriction server-side for it to be a real boundary.
func (e *Engine) LoadAll(ctx context.Context, actor domain.User) error {
	var (
		wg       sync.WaitGroup
		tickets  []domain.Ticket
		contacts []domain.Contact
		users    []domain.User
		errs     [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		tickets, errs[0] = e.gateway.ListTickets(ctx)
	}()
	go func() {
		defer wg.Done()
		contacts, errs[1] = e.gateway.ListContacts(ctx)
	}()
	go func() {
		defer wg.Done()
		users, errs[2] = e.gateway.ListUsers(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			e.mu.Lock()
			e.tickets, e.contacts, e.users = nil, nil, nil
			e.mu.Unlock()
			e.logger.Error("load failed", zap.Error(err))
			return apperrors.NewFetchError(err)
		}
	}

	if actor.Role == domain.RoleEmployee {
		visible := make([]domain.Ticket, 0, len(tickets))
		for _, t := range tickets {
			if t.AssignedTo == actor.ID {
				visible = append(visible, t)
			}
		}
		tickets = visible
	}

	e.mu.Lock()
	e.tickets, e.contacts, e.users = tickets, contacts, users
	e.mu.Unlock()

	e.logger.Info("collections loaded",
		zap.Int("tickets", len(tickets)),
		zap.Int("contacts", len(contacts)),
		zap.Int("users", len(users)))
	return nil
}

// Transition moves a ticket into the target stage on behalf of actor.
//
// The authorization matrix is checked before any network call; a denial
// surfaces as FORBIDDEN with the status untouched. Moving a ticket onto
// its current stage is a no-op: no call, no notification. Otherwise the
// local state changes optimistically, the backend is asked to persist, and
// a rejection rolls the collection back to its pre-transition snapshot.
// Committed transitions into Resolved or Rejected fan out notifications.
func (e *Engine) Transition(ctx context.Context, actor domain.User, ticketID string, target domain.TicketStatus) error {
	if !target.IsValid() {
		return apperrors.NewValidationError("unknown workflow stage", map[string]any{"status": target})
	}
	if !CanSetStatus(actor.Role, target) {
		return apperrors.NewForbidden(DenialMessage(target))
	}

	lock := e.ticketLock(ticketID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	idx := e.indexOfLocked(ticketID)
	if idx < 0 {
		e.mu.Unlock()
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if e.tickets[idx].Status == target {
		e.mu.Unlock()
		return nil
	}
	snapshot := e.snapshotLocked()
	e.tickets[idx].Status = target
	moved := e.tickets[idx]
	e.mu.Unlock()

	if err := e.gateway.UpdateTicketStatus(ctx, ticketID, target); err != nil {
		e.mu.Lock()
		e.restoreLocked(snapshot)
		e.mu.Unlock()
		e.logger.Warn("transition rejected, rolled back",
			zap.String("ticket_id", ticketID),
			zap.String("target", string(target)),
			zap.Error(err))
		return apperrors.NewPersistenceError(err)
	}

	e.dispatchStatusChange(ctx, moved, actor)
	return nil
}

// Create validates and persists a new ticket, then refreshes the
// collections so joins stay consistent.
func (e *Engine) Create(ctx context.Context, actor domain.User, input gateway.TicketInput) error {
	if err := e.validateSubmission(actor, &input); err != nil {
		return err
	}
	if _, err := e.gateway.CreateTicket(ctx, input); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return e.LoadAll(ctx, actor)
}

// Update validates and persists edits to an existing ticket, then
// refreshes the collections.
func (e *Engine) Update(ctx context.Context, actor domain.User, ticketID string, input gateway.TicketInput) error {
	if err := e.validateSubmission(actor, &input); err != nil {
		return err
	}
	if _, err := e.gateway.UpdateTicket(ctx, ticketID, input); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return e.LoadAll(ctx, actor)
}

// Delete removes a ticket. The local collection is touched only after the
// server confirms; deletion is permanent.
func (e *Engine) Delete(ctx context.Context, ticketID string) error {
	if err := e.gateway.DeleteTicket(ctx, ticketID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	e.mu.Lock()
	if idx := e.indexOfLocked(ticketID); idx >= 0 {
		e.tickets = append(e.tickets[:idx], e.tickets[idx+1:]...)
	}
	e.mu.Unlock()
	return nil
}

// validateSubmission applies the client-side required-field checks and the
// same Resolved/Rejected matrix the drag path uses. Both run before any
// network call.
func (e *Engine) validateSubmission(actor domain.User, input *gateway.TicketInput) error {
	input.Title = strings.TrimSpace(input.Title)
	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "required"
	}
	if input.CustomerID == "" {
		details["customerId"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("missing required fields", details)
	}
	if input.Status == "" {
		input.Status = domain.TicketStatusOpen
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !CanSetStatus(actor.Role, input.Status) {
		return apperrors.NewForbidden(DenialMessage(input.Status))
	}
	return nil
}

func (e *Engine) dispatchStatusChange(ctx context.Context, ticket domain.Ticket, actor domain.User) {
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusRejected {
		return
	}
	contact := e.ContactByID(ticket.CustomerID)
	var admins []domain.User
	if ticket.Status == domain.TicketStatusResolved && actor.Role == domain.RoleEmployee {
		for _, u := range e.Users() {
			if u.Role == domain.RoleAdmin {
				admins = append(admins, u)
			}
		}
	}
	jobs := notify.StatusChangeJobs(ticket, contact, actor, admins)
	if len(jobs) == 0 {
		return
	}
	deliveries := e.notifier.Dispatch(ctx, jobs)
	failed := 0
	for _, d := range deliveries {
		if d.Err != nil {
			failed++
		}
	}
	e.logger.Info("status-change notifications dispatched",
		zap.String("ticket_id", ticket.ID),
		zap.String("status", string(ticket.Status)),
		zap.Int("sent", len(deliveries)-failed),
		zap.Int("failed", failed))
}

// Tickets returns a copy of the ticket collection.
func (e *Engine) Tickets() []domain.Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Ticket(nil), e.tickets...)
}

// Contacts returns a copy of the contact collection.
func (e *Engine) Contacts() []domain.Contact {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Contact(nil), e.contacts...)
}

// Users returns a copy of the user collection.
func (e *Engine) Users() []domain.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.User(nil), e.users...)
}

// TicketByID returns the ticket with the given id, or nil.
func (e *Engine) TicketByID(id string) *domain.Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOfLocked(id); idx >= 0 {
		t := e.tickets[idx]
		return &t
	}
	return nil
}

// ContactByID resolves a contact reference, or nil when absent.
func (e *Engine) ContactByID(id string) *domain.Contact {
	if id == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.contacts {
		if e.contacts[i].ID == id {
			c := e.contacts[i]
			return &c
		}
	}
	return nil
}

// UserByID resolves a user reference, or nil when absent.
func (e *Engine) UserByID(id string) *domain.User {
	if id == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.users {
		if e.users[i].ID == id {
			u := e.users[i]
			return &u
		}
	}
	return nil
}

// snapshotLocked captures the ticket collection so a rejected persistence
// call can compensate by restoring the exact pre-transition state.
func (e *Engine) snapshotLocked() []domain.Ticket {
	return append([]domain.Ticket(nil), e.tickets...)
}

func (e *Engine) restoreLocked(snapshot []domain.Ticket) {
	e.tickets = snapshot
}

func (e *Engine) indexOfLocked(id string) int {
	for i := range e.tickets {
		if e.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) ticketLock(id string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	if lock, ok := e.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	e.locks[id] = lock
	return lock
}
