package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/api/dto"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/service"
	"github.com/qoldai/helpdesk/pkg/util"
)

// TelephonyHandler serves the PBX webhook endpoints. These are
// authenticated by a shared API key, not by user tokens.
type TelephonyHandler struct {
	telephony *service.TelephonyService
	apiKey    string
}

// NewTelephonyHandler creates the telephony handler.
func NewTelephonyHandler(telephony *service.TelephonyService, apiKey string) *TelephonyHandler {
	return &TelephonyHandler{telephony: telephony, apiKey: apiKey}
}

// Authenticate verifies the PBX shared key.
func (h *TelephonyHandler) Authenticate(c *fiber.Ctx) error {
	if h.apiKey == "" || c.Get("X-Api-Key") != h.apiKey {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid api key")
	}
	return c.Next()
}

// Event handles POST /api/v1/telephony/event.
func (h *TelephonyHandler) Event(c *fiber.Ctx) error {
	var req dto.CallEventRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	err := h.telephony.HandleEvent(c.Context(), service.CallEventInput{
		CallID:      req.CallID,
		Phone:       req.Phone,
		Direction:   callDirection(req.Direction),
		Status:      domain.CallStatus(req.Status),
		OperatorExt: req.OperatorExt,
		GroupName:   req.GroupName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// History handles POST /api/v1/telephony/history.
func (h *TelephonyHandler) History(c *fiber.Ctx) error {
	var req dto.CallHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	input := service.CallHistoryInput{
		CallID:       req.CallID,
		Phone:        req.Phone,
		Direction:    callDirection(req.Direction),
		Status:       domain.CallStatus(req.Status),
		Duration:     req.Duration,
		RecordingURL: req.RecordingURL,
	}
	if t, err := time.Parse(time.RFC3339, req.StartedAt); err == nil {
		input.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, req.AnsweredAt); err == nil {
		input.AnsweredAt = &t
	}
	if t, err := time.Parse(time.RFC3339, req.EndedAt); err == nil {
		input.EndedAt = &t
	}

	if err := h.telephony.HandleHistory(c.Context(), input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Rating handles POST /api/v1/telephony/rating.
func (h *TelephonyHandler) Rating(c *fiber.Ctx) error {
	var req dto.CallRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if err := h.telephony.RateCall(c.Context(), req.CallID, req.Rating); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Contact handles GET /api/v1/telephony/contact.
func (h *TelephonyHandler) Contact(c *fiber.Ctx) error {
	contact, err := h.telephony.Contact(c.Context(), c.Query("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"phone":         contact.Phone,
		"knownCustomer": contact.KnownCustomer,
		"clientId":      contact.ClientID,
		"clientName":    contact.ClientName,
		"openTickets":   dto.FromTickets(contact.OpenTickets),
	})
}

func callDirection(value string) domain.CallDirection {
	if value == string(domain.CallDirectionOut) {
		return domain.CallDirectionOut
	}
	return domain.CallDirectionIn
}
