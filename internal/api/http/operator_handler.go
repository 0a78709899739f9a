package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/api/dto"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/internal/service"
	"github.com/qoldai/helpdesk/pkg/util"
)

// OperatorHandler serves the staff-only endpoints: the queue, assignment,
// AI assist and stats.
type OperatorHandler struct {
	tickets *service.TicketService
	assist  *service.AssistService
	stats   *service.StatsService
}

// NewOperatorHandler creates the operator handler.
func NewOperatorHandler(tickets *service.TicketService, assist *service.AssistService, stats *service.StatsService) *OperatorHandler {
	return &OperatorHandler{tickets: tickets, assist: assist, stats: stats}
}

// List handles GET /api/v1/operator/tickets.
func (h *OperatorHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		ClientID:     c.Query("clientId"),
		OperatorID:   c.Query("operatorId"),
		DepartmentID: c.Query("departmentId"),
		SearchTerm:   c.Query("search"),
		Limit:        c.QueryInt("limit", 50),
		Offset:       c.QueryInt("offset", 0),
	}
	if channel := c.Query("channel"); channel != "" {
		filter.Channel = domain.TicketChannel(channel)
	}
	for _, status := range splitCSV(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}
	for _, priority := range splitCSV(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(priority))
	}

	tickets, err := h.tickets.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.FromTickets(tickets)})
}

// Assign handles POST /api/v1/operator/tickets/:id/assign.
func (h *OperatorHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.OperatorID == "" {
		return util.NewValidationError("operatorId is required", nil)
	}
	ticket, err := h.tickets.AssignOperator(c.Context(), c.Params("id"), req.OperatorID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Suggest handles POST /api/v1/operator/tickets/:id/suggest.
func (h *OperatorHandler) Suggest(c *fiber.Ctx) error {
	reply, err := h.assist.SuggestReply(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"suggestedReply": reply})
}

// Summarize handles POST /api/v1/operator/tickets/:id/summarize.
func (h *OperatorHandler) Summarize(c *fiber.Ctx) error {
	summary, err := h.assist.Summarize(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary})
}

// Stats handles GET /api/v1/operator/stats.
func (h *OperatorHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Overview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"total":              stats.Total,
		"byStatus":           stats.ByStatus,
		"byPriority":         stats.ByPriority,
		"byChannel":          stats.ByChannel,
		"byLanguage":         stats.ByLanguage,
		"autoResolved":       stats.AutoResolved,
		"autoResolveRate":    stats.AutoResolveRate,
		"slaBreached":        stats.SLABreached,
		"slaComplianceRate":  stats.SLAComplianceRate,
		"avgResolutionHours": stats.AvgResolutionHours,
	})
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
