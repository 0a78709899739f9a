package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/api/dto"
	"github.com/qoldai/helpdesk/internal/auth"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/internal/service"
	"github.com/qoldai/helpdesk/pkg/util"
)

// TicketsHandler serves the client-facing ticket endpoints.
type TicketsHandler struct {
	intake      *service.IntakeService
	tickets     *service.TicketService
	messages    *service.MessageService
	departments repository.DepartmentRepository
}

// NewTicketsHandler creates the ticket handler.
func NewTicketsHandler(
	intake *service.IntakeService,
	tickets *service.TicketService,
	messages *service.MessageService,
	departments repository.DepartmentRepository,
) *TicketsHandler {
	return &TicketsHandler{intake: intake, tickets: tickets, messages: messages, departments: departments}
}

// Create handles POST /api/v1/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	result, err := h.intake.Create(c.Context(), service.CreateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Channel:     domain.TicketChannelWeb,
		ClientID:    auth.UserID(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ticket":       dto.FromTicket(result.Ticket),
		"autoResolved": result.AutoResolved,
		"botReply":     result.BotReply,
	})
}

// ListMine handles GET /api/v1/tickets.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	tickets, err := h.tickets.ListMine(c.Context(), auth.UserID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.FromTickets(tickets)})
}

// Get handles GET /api/v1/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"), auth.UserID(c), auth.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Update handles PATCH /api/v1/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	input := service.UpdateTicketInput{
		Subject:      req.Subject,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		OperatorID:   req.OperatorID,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		input.Priority = &priority
	}

	ticket, err := h.tickets.Update(c.Context(), c.Params("id"), auth.UserID(c), auth.Role(c), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Messages handles GET /api/v1/tickets/:id/messages.
func (h *TicketsHandler) Messages(c *fiber.Ctx) error {
	msgs, err := h.messages.History(c.Context(), c.Params("id"), auth.UserID(c), auth.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": dto.FromMessages(msgs)})
}

// AddMessage handles POST /api/v1/tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	msg, ticket, err := h.messages.Append(c.Context(), service.AppendMessageInput{
		TicketID:   c.Params("id"),
		SenderID:   auth.UserID(c),
		SenderRole: auth.Role(c),
		Content:    req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": dto.FromMessage(msg),
		"status":  string(ticket.Status),
	})
}

// Departments handles GET /api/v1/departments.
func (h *TicketsHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.departments.ListActive(c.Context())
	if err != nil {
		return util.MapError(err)
	}
	out := make([]dto.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, dto.DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return c.JSON(fiber.Map{"departments": out})
}
