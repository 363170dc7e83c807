package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
	"github.com/spec-kit/crm-console/internal/workflow"
)

// State enumerates the drawer's finite states.
type State int

const (
	StateClosed State = iota
	StateCreating
	StateEditing
	StateSubmitting
)

// Fields is the drawer's field set.
type Fields struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	CustomerID  string
	AssignedTo  string
}

// Defaults returns the documented blank-form values.
func Defaults() Fields {
	return Fields{
		Priority: domain.TicketPriorityMedium,
		Status:   domain.TicketStatusOpen,
	}
}

// Input converts the fields into the gateway mutation payload.
func (f Fields) Input() gateway.TicketInput {
	return gateway.TicketInput{
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Status:      f.Status,
		CustomerID:  f.CustomerID,
		AssignedTo:  f.AssignedTo,
	}
}

// Controller manages the create/edit drawer. Closing — on cancel,
// successful submit, or successful delete — always resets the fields to
// defaults so no stale data leaks into the next open. Validation and
// persistence failures keep the drawer open with the fields retained.
type Controller struct {
	engine *workflow.Engine
	logger *zap.Logger

	state            State
	fields           Fields
	editingID        string
	confirmingDelete bool
}

// NewController builds a closed controller.
func NewController(engine *workflow.Engine, logger *zap.Logger) *Controller {
	return &Controller{engine: engine, logger: logger, fields: Defaults()}
}

// State returns the current drawer state.
func (c *Controller) State() State { return c.state }

// Fields returns the current field values.
func (c *Controller) Fields() Fields { return c.fields }

// SetFields replaces the field values. Ignored unless the drawer is in
// creating or editing state.
func (c *Controller) SetFields(f Fields) {
	if c.state != StateCreating && c.state != StateEditing {
		return
	}
	c.fields = f
}

// EditingID returns the id of the ticket being edited, or "".
func (c *Controller) EditingID() string { return c.editingID }

// ConfirmingDelete reports whether the delete-confirm overlay is up.
func (c *Controller) ConfirmingDelete() bool { return c.confirmingDelete }

// Open switches closed → creating with a blank form.
func (c *Controller) Open() {
	if c.state != StateClosed {
		return
	}
	c.fields = Defaults()
	c.state = StateCreating
}

// OpenEdit switches closed → editing, pre-filled from the selected ticket.
func (c *Controller) OpenEdit(t domain.Ticket) {
	if c.state != StateClosed {
		return
	}
	c.editingID = t.ID
	c.fields = Fields{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CustomerID:  t.CustomerID,
		AssignedTo:  t.AssignedTo,
	}
	c.state = StateEditing
}

// Close resets everything to defaults.
func (c *Controller) Close() {
	c.state = StateClosed
	c.editingID = ""
	c.confirmingDelete = false
	c.fields = Defaults()
}

// Submit drives creating/editing → submitting → closed on success. On
// validation, authorization, or persistence failure the drawer returns to
// its prior state with the fields retained and the error is surfaced.
func (c *Controller) Submit(ctx context.Context, actor domain.User) error {
	prior := c.state
	if prior != StateCreating && prior != StateEditing {
		return nil
	}
	c.state = StateSubmitting

	var err error
	if prior == StateEditing {
		err = c.engine.Update(ctx, actor, c.editingID, c.fields.Input())
	} else {
		err = c.engine.Create(ctx, actor, c.fields.Input())
	}
	if err != nil {
		c.state = prior
		return err
	}
	c.Close()
	return nil
}

// RequestDelete raises the delete-confirm overlay. Reachable only while
// editing.
func (c *Controller) RequestDelete() {
	if c.state != StateEditing {
		return
	}
	c.confirmingDelete = true
}

// CancelDelete dismisses the overlay, staying in editing.
func (c *Controller) CancelDelete() {
	c.confirmingDelete = false
}

// ConfirmDelete deletes the ticket under edit. Success closes the drawer;
// failure dismisses the overlay and keeps the drawer open.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	if c.state != StateEditing || !c.confirmingDelete {
		return nil
	}
	if err := c.engine.Delete(ctx, c.editingID); err != nil {
		c.confirmingDelete = false
		c.logger.Warn("delete failed", zap.String("ticket_id", c.editingID), zap.Error(err))
		return err
	}
	c.Close()
	return nil
}
