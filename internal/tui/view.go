package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/crm-console/internal/board"
	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/form"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("#3b82f6")).
				Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3b82f6")).
				Bold(true)

	drawerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 2)

	priorityStyles = map[domain.TicketPriority]lipgloss.Style{
		domain.TicketPriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
		domain.TicketPriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316")),
		domain.TicketPriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
		domain.TicketPriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
)

// View renders the whole console frame.
func (m Model) View() string {
	if m.loading {
		return subtleStyle.Render("Loading Support Board...")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.drawer.ConfirmingDelete() {
		b.WriteString(m.renderDeleteConfirm())
	} else if m.drawer.State() == form.StateCreating || m.drawer.State() == form.StateEditing || m.drawer.State() == form.StateSubmitting {
		b.WriteString(m.renderDrawer())
	} else if m.mode == ViewList {
		b.WriteString(m.renderList())
	} else {
		b.WriteString(m.renderBoard())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("Support Tickets")
	who := subtleStyle.Render(fmt.Sprintf("%s (%s)", m.actor.Name, m.actor.Role))
	mode := "board"
	if m.mode == ViewList {
		mode = "list"
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", who, "  ", subtleStyle.Render("["+mode+"]"))
}

func (m Model) renderBoard() string {
	colWidth := 28
	if m.width > 0 {
		if w := m.width/len(m.columns) - 4; w > 20 {
			colWidth = w
		}
	}

	rendered := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color(col.Column.Color)).
			Bold(true).
			Render(fmt.Sprintf("%d %s (%d)", i+1, col.Column.Title, len(col.Cards)))

		rows := []string{header}
		for j, card := range col.Cards {
			style := cardStyle
			if i == m.selCol && j == m.selRow {
				style = selectedCardStyle
			}
			rows = append(rows, style.Width(colWidth).Render(renderCard(card)))
		}
		if len(col.Cards) == 0 {
			rows = append(rows, subtleStyle.Render("  —"))
		}
		rendered = append(rendered, columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderCard(card board.Card) string {
	t := card.Ticket
	prio := priorityStyles[t.Priority].Render(strings.ToUpper(string(t.Priority)))

	requester := card.Requester.Name
	if card.Requester.Detail != "" {
		requester += subtleStyle.Render(" · " + card.Requester.Detail)
	}

	assignee := subtleStyle.Render("(unassigned)")
	if card.AssigneeInitial != "" {
		assignee = fmt.Sprintf("[%s]", card.AssigneeInitial)
	}

	return fmt.Sprintf("%s\n%s\n%s %s", prio, t.Title, requester, assignee)
}

func (m Model) renderList() string {
	flat := m.flatCards()
	if len(flat) == 0 {
		return subtleStyle.Render("No tickets.")
	}
	var rows []string
	for i, card := range flat {
		t := card.Ticket
		line := fmt.Sprintf("%-12s %-8s %-40s %s",
			t.Status, t.Priority, truncate(t.Title, 40), card.Requester.Name)
		if i == m.selRow {
			line = selectedRowStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderDrawer() string {
	f := m.drawer.Fields()

	heading := "New Ticket"
	if m.drawer.EditingID() != "" {
		heading = "Edit Ticket"
	}
	if m.drawer.State() == form.StateSubmitting {
		heading += " (saving...)"
	}

	customer := "Select Customer..."
	if c := m.engine.ContactByID(f.CustomerID); c != nil {
		customer = c.Name
		if c.Company != "" {
			customer += " (" + c.Company + ")"
		}
	}
	assignee := "Unassigned"
	if u := m.engine.UserByID(f.AssignedTo); u != nil {
		assignee = fmt.Sprintf("%s (%s)", u.Name, u.Role)
	}

	rows := []string{
		headerStyle.Render(heading),
		"",
		m.fieldRow(fieldTitle, "Subject *", m.titleInput.View()),
		m.fieldRow(fieldPriority, "Priority", string(f.Priority)),
		m.fieldRow(fieldStatus, "Status", string(f.Status)),
		m.fieldRow(fieldCustomer, "Customer *", customer),
		m.fieldRow(fieldAssignee, "Assign To", assignee),
		m.fieldRow(fieldDescription, "Description", m.descInput.View()),
		"",
		subtleStyle.Render("tab/↑↓ fields · ←→ options · ctrl+s save · esc cancel" + deleteHint(m.drawer.EditingID())),
	}
	return drawerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func deleteHint(editingID string) string {
	if editingID == "" {
		return ""
	}
	return " · ctrl+d delete"
}

func (m Model) fieldRow(field formField, label, value string) string {
	marker := "  "
	if m.focus == field {
		marker = "> "
	}
	return fmt.Sprintf("%s%-14s %s", marker, label, value)
}

func (m Model) renderDeleteConfirm() string {
	title := ""
	if t := m.engine.TicketByID(m.drawer.EditingID()); t != nil {
		title = t.Title
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		headerStyle.Render("Delete Ticket?"),
		"",
		fmt.Sprintf("Are you sure you want to delete %q?", title),
		subtleStyle.Render("This cannot be undone."),
		"",
		"y: delete    n: cancel",
	)
	return drawerStyle.BorderForeground(lipgloss.Color("#ef4444")).Render(body)
}

func (m Model) renderStatusBar() string {
	if m.alert != "" {
		return alertStyle.Render("! " + m.alert)
	}
	if m.notice != "" {
		return noticeStyle.Render(m.notice)
	}
	return subtleStyle.Render("←→↑↓ navigate · 1-4 move to column · enter edit · n new · tab view · r reload · q quit")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
