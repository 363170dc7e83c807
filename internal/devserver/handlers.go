package devserver

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/auth"
	"github.com/spec-kit/crm-console/internal/domain"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// Handlers serves the documented HTTP contract over the in-memory store.
type Handlers struct {
	store     *Store
	tokens    *auth.TokenManager
	logger    *zap.Logger
	emailFrom string
}

// NewHandlers constructs the handler set.
func NewHandlers(store *Store, tokens *auth.TokenManager, logger *zap.Logger, emailFrom string) *Handlers {
	return &Handlers{store: store, tokens: tokens, logger: logger, emailFrom: emailFrom}
}

// Login POST /api/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, hash, ok := h.store.FindUserByEmail(req.Email)
	if !ok {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(hash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, _, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"token": token, "user": user}})
}

// ListUsers GET /api/auth/users.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.ListUsers()})
}

// ListContacts GET /api/contacts.
func (h *Handlers) ListContacts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.ListContacts()})
}

// ListTickets GET /api/tickets. The set is unfiltered: the Employee
// visibility restriction lives in the console, and a production backend
// would have to repeat it here for it to mean anything.
func (h *Handlers) ListTickets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.ListTickets()})
}

// CreateTicket POST /api/tickets.
func (h *Handlers) CreateTicket(c *fiber.Ctx) error {
	var req ticketPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(orEmpty(req.Title)) == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	ticket := domain.Ticket{
		Title:       strings.TrimSpace(orEmpty(req.Title)),
		Description: orEmpty(req.Description),
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusOpen,
		CustomerID:  orEmpty(req.CustomerID),
		AssignedTo:  orEmpty(req.AssignedTo),
		GuestName:   orEmpty(req.GuestName),
		GuestEmail:  orEmpty(req.GuestEmail),
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *req.Status})
		}
		ticket.Status = *req.Status
	}

	created := h.store.CreateTicket(ticket)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateTicket PUT /api/tickets/:id. Accepts partial payloads; the drag
// surface sends only {"status": ...}.
func (h *Handlers) UpdateTicket(c *fiber.Ctx) error {
	ticket, err := h.store.GetTicket(c.Params("id"))
	if err != nil {
		return err
	}

	var req ticketPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return apperrors.NewValidationError("title required", nil)
		}
		ticket.Title = title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *req.Status})
		}
		ticket.Status = *req.Status
	}
	if req.CustomerID != nil {
		ticket.CustomerID = *req.CustomerID
	}
	if req.AssignedTo != nil {
		ticket.AssignedTo = *req.AssignedTo
	}
	if req.GuestName != nil {
		ticket.GuestName = *req.GuestName
	}
	if req.GuestEmail != nil {
		ticket.GuestEmail = *req.GuestEmail
	}

	if err := h.store.SaveTicket(ticket); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *Handlers) DeleteTicket(c *fiber.Ctx) error {
	if err := h.store.DeleteTicket(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// SendEmail POST /api/notifications/email. The dev backend has no real
// mail transport; it validates and logs.
func (h *Handlers) SendEmail(c *fiber.Ctx) error {
	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.To == "" || req.Subject == "" {
		return apperrors.NewValidationError("to and subject required", nil)
	}
	h.logger.Info("email queued",
		zap.String("from", h.emailFrom),
		zap.String("to", req.To),
		zap.String("subject", req.Subject))
	return c.JSON(fiber.Map{"data": fiber.Map{"queued": true}})
}

// CheckIn POST /api/attendance/check-in.
func (h *Handlers) CheckIn(c *fiber.Ctx) error {
	userID, err := attendanceUserID(c)
	if err != nil {
		return err
	}
	if err := h.store.CheckIn(userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"checkedIn": true}})
}

// CheckOut POST /api/attendance/check-out.
func (h *Handlers) CheckOut(c *fiber.Ctx) error {
	userID, err := attendanceUserID(c)
	if err != nil {
		return err
	}
	if err := h.store.CheckOut(userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"checkedOut": true}})
}

// ticketPayload covers both create and partial update bodies.
type ticketPayload struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	CustomerID  *string                `json:"customerId"`
	AssignedTo  *string                `json:"assignedTo"`
	GuestName   *string                `json:"guestName"`
	GuestEmail  *string                `json:"guestEmail"`
}

func attendanceUserID(c *fiber.Ctx) (string, error) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return "", apperrors.NewValidationError("userId required", nil)
	}
	return req.UserID, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
