package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/board"
	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/form"
	"github.com/spec-kit/crm-console/internal/workflow"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// ViewMode switches between the kanban board and the flat list.
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewList
)

// formField indexes the drawer's focusable fields in display order.
type formField int

const (
	fieldTitle formField = iota
	fieldPriority
	fieldStatus
	fieldCustomer
	fieldAssignee
	fieldDescription
	fieldCount
)

type loadedMsg struct{ err error }
type transitionMsg struct{ err error }
type submitMsg struct{ err error }
type deleteMsg struct{ err error }

// Model is the bubbletea model for the support board. It treats the
// engine's collections as read-only input and produces intents (drag
// transitions, form submissions) back into it.
type Model struct {
	engine *workflow.Engine
	drawer *form.Controller
	actor  domain.User
	logger *zap.Logger

	columns []board.ColumnView
	mode    ViewMode
	loading bool
	alert   string
	notice  string
	width   int
	height  int

	selCol int
	selRow int

	focus      formField
	titleInput textinput.Model
	descInput  textinput.Model
}

// New builds the model. The caller runs LoadAll through Init.
func New(engine *workflow.Engine, drawer *form.Controller, actor domain.User, logger *zap.Logger) Model {
	title := textinput.New()
	title.Placeholder = "e.g. Login page error"
	title.CharLimit = 120
	desc := textinput.New()
	desc.Placeholder = "Detailed description of the issue..."
	desc.CharLimit = 500

	return Model{
		engine:     engine,
		drawer:     drawer,
		actor:      actor,
		logger:     logger,
		loading:    true,
		titleInput: title,
		descInput:  desc,
	}
}

// Init triggers the initial concurrent load.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.engine.LoadAll(context.Background(), m.actor)}
	}
}

func (m Model) transitionCmd(drag board.DragEnd) tea.Cmd {
	return func() tea.Msg {
		return transitionMsg{err: m.engine.Transition(context.Background(), m.actor, drag.TicketID, drag.Destination)}
	}
}

func (m Model) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return submitMsg{err: m.drawer.Submit(context.Background(), m.actor)}
	}
}

func (m Model) deleteCmd() tea.Cmd {
	return func() tea.Msg {
		return deleteMsg{err: m.drawer.ConfirmDelete(context.Background())}
	}
}

// Update routes messages. Keyboard input goes to the delete overlay, the
// drawer, or the board, in that order of precedence.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.alert = apperrors.ToDomainError(msg.err).Message
		}
		m.rebuild()
		return m, nil

	case transitionMsg:
		if msg.err != nil {
			m.alert = apperrors.ToDomainError(msg.err).Message
		}
		m.rebuild()
		return m, nil

	case submitMsg:
		if msg.err != nil {
			m.alert = apperrors.ToDomainError(msg.err).Message
			m.syncInputs()
			return m, nil
		}
		m.notice = "Saved"
		m.rebuild()
		return m, nil

	case deleteMsg:
		if msg.err != nil {
			m.alert = apperrors.ToDomainError(msg.err).Message
			return m, nil
		}
		m.notice = "Deleted"
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		m.alert = ""
		m.notice = ""
		if m.drawer.ConfirmingDelete() {
			return m.updateDeleteConfirm(msg)
		}
		if m.drawer.State() == form.StateCreating || m.drawer.State() == form.StateEditing {
			return m.updateDrawer(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "tab":
		if m.mode == ViewBoard {
			m.mode = ViewList
		} else {
			m.mode = ViewBoard
		}
		m.clampSelection()
		return m, nil
	case "n":
		m.drawer.Open()
		m.applyDrawerFields()
		return m, nil
	case "enter":
		if t := m.selectedTicket(); t != nil {
			m.drawer.OpenEdit(*t)
			m.applyDrawerFields()
		}
		return m, nil
	case "left", "h":
		if m.mode == ViewBoard && m.selCol > 0 {
			m.selCol--
			m.clampSelection()
		}
		return m, nil
	case "right", "l":
		if m.mode == ViewBoard && m.selCol < len(m.columns)-1 {
			m.selCol++
			m.clampSelection()
		}
		return m, nil
	case "up", "k":
		if m.selRow > 0 {
			m.selRow--
		}
		return m, nil
	case "down", "j":
		m.selRow++
		m.clampSelection()
		return m, nil
	case "1", "2", "3", "4":
		// The "drag": drop the selected ticket onto column N. The
		// gesture is forwarded verbatim to the workflow engine.
		t := m.selectedTicket()
		if t == nil {
			return m, nil
		}
		n, _ := strconv.Atoi(msg.String())
		cols := domain.BoardColumns()
		drag := board.DragEnd{TicketID: t.ID, Destination: cols[n-1].ID}
		return m, m.transitionCmd(drag)
	}
	return m, nil
}

func (m Model) updateDrawer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.drawer.Close()
		m.blurInputs()
		return m, nil
	case "ctrl+s":
		m.captureInputs()
		return m, m.submitCmd()
	case "ctrl+d":
		if m.drawer.State() == form.StateEditing {
			m.drawer.RequestDelete()
		}
		return m, nil
	case "up", "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		m.syncFocus()
		return m, nil
	case "down", "tab":
		m.focus = (m.focus + 1) % fieldCount
		m.syncFocus()
		return m, nil
	case "left", "right":
		if m.focus == fieldTitle || m.focus == fieldDescription {
			break
		}
		m.cycleOption(msg.String() == "right")
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
		m.captureInputs()
	case fieldDescription:
		m.descInput, cmd = m.descInput.Update(msg)
		m.captureInputs()
	}
	return m, cmd
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		return m, m.deleteCmd()
	case "n", "esc":
		m.drawer.CancelDelete()
		return m, nil
	}
	return m, nil
}

// cycleOption steps the focused enum field through its options.
func (m *Model) cycleOption(forward bool) {
	f := m.drawer.Fields()
	switch m.focus {
	case fieldPriority:
		opts := []domain.TicketPriority{
			domain.TicketPriorityLow, domain.TicketPriorityMedium,
			domain.TicketPriorityHigh, domain.TicketPriorityCritical,
		}
		f.Priority = cycle(opts, f.Priority, forward)
	case fieldStatus:
		f.Status = cycle(m.statusOptions(f.Status), f.Status, forward)
	case fieldCustomer:
		opts := []string{""}
		for _, c := range m.engine.Contacts() {
			opts = append(opts, c.ID)
		}
		f.CustomerID = cycle(opts, f.CustomerID, forward)
	case fieldAssignee:
		opts := []string{""}
		for _, u := range m.engine.Users() {
			opts = append(opts, u.ID)
		}
		f.AssignedTo = cycle(opts, f.AssignedTo, forward)
	}
	m.drawer.SetFields(f)
}

// statusOptions hides stages the actor may not select, unless the ticket
// is already in that stage.
func (m *Model) statusOptions(current domain.TicketStatus) []domain.TicketStatus {
	var opts []domain.TicketStatus
	for _, col := range domain.BoardColumns() {
		if col.ID == current || workflow.CanSetStatus(m.actor.Role, col.ID) {
			opts = append(opts, col.ID)
		}
	}
	return opts
}

func cycle[T comparable](opts []T, current T, forward bool) T {
	if len(opts) == 0 {
		return current
	}
	idx := 0
	for i, o := range opts {
		if o == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(opts)
	} else {
		idx = (idx + len(opts) - 1) % len(opts)
	}
	return opts[idx]
}

// applyDrawerFields pushes controller fields into the text inputs when the
// drawer opens.
func (m *Model) applyDrawerFields() {
	f := m.drawer.Fields()
	m.titleInput.SetValue(f.Title)
	m.descInput.SetValue(f.Description)
	m.focus = fieldTitle
	m.syncFocus()
}

// captureInputs pulls text-input values back into the controller.
func (m *Model) captureInputs() {
	f := m.drawer.Fields()
	f.Title = m.titleInput.Value()
	f.Description = m.descInput.Value()
	m.drawer.SetFields(f)
}

// syncInputs refreshes inputs from retained fields after a failed submit.
func (m *Model) syncInputs() {
	f := m.drawer.Fields()
	m.titleInput.SetValue(f.Title)
	m.descInput.SetValue(f.Description)
}

func (m *Model) syncFocus() {
	m.titleInput.Blur()
	m.descInput.Blur()
	switch m.focus {
	case fieldTitle:
		m.titleInput.Focus()
	case fieldDescription:
		m.descInput.Focus()
	}
}

func (m *Model) blurInputs() {
	m.titleInput.Blur()
	m.descInput.Blur()
}

func (m *Model) rebuild() {
	m.columns = board.Build(m.engine.Tickets(), m.engine.Contacts(), m.engine.Users())
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.mode == ViewList {
		flat := len(m.flatCards())
		if m.selRow >= flat {
			m.selRow = flat - 1
		}
		if m.selRow < 0 {
			m.selRow = 0
		}
		return
	}
	if len(m.columns) == 0 {
		m.selCol, m.selRow = 0, 0
		return
	}
	if m.selCol >= len(m.columns) {
		m.selCol = len(m.columns) - 1
	}
	cards := m.columns[m.selCol].Cards
	if m.selRow >= len(cards) {
		m.selRow = len(cards) - 1
	}
	if m.selRow < 0 {
		m.selRow = 0
	}
}

// selectedTicket returns the ticket under the cursor in either view mode.
func (m *Model) selectedTicket() *domain.Ticket {
	if m.mode == ViewList {
		flat := m.flatCards()
		if m.selRow >= 0 && m.selRow < len(flat) {
			t := flat[m.selRow].Ticket
			return &t
		}
		return nil
	}
	if m.selCol < 0 || m.selCol >= len(m.columns) {
		return nil
	}
	cards := m.columns[m.selCol].Cards
	if m.selRow < 0 || m.selRow >= len(cards) {
		return nil
	}
	t := cards[m.selRow].Ticket
	return &t
}

// flatCards is the list-view projection: board order, column by column.
func (m *Model) flatCards() []board.Card {
	var out []board.Card
	for _, col := range m.columns {
		out = append(out, col.Cards...)
	}
	return out
}
