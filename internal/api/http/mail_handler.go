package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/api/dto"
	"github.com/qoldai/helpdesk/internal/channel"
	"github.com/qoldai/helpdesk/internal/worker"
	"github.com/qoldai/helpdesk/pkg/util"
)

// MailHandler exposes staff controls over the mailbox channel: trigger a
// poll now, or inject a message into the development feed.
type MailHandler struct {
	poller *worker.MailPoller
	feed   *channel.MemoryFeed
}

// NewMailHandler creates the mail handler. feed may be nil when a real
// mailbox feed is configured.
func NewMailHandler(poller *worker.MailPoller, feed *channel.MemoryFeed) *MailHandler {
	return &MailHandler{poller: poller, feed: feed}
}

// Check handles POST /api/v1/mail/check.
func (h *MailHandler) Check(c *fiber.Ctx) error {
	handled, err := h.poller.Poll(c.Context())
	if err != nil {
		return util.MapError(err)
	}
	return c.JSON(fiber.Map{"handled": handled})
}

// Simulate handles POST /api/v1/mail/simulate.
func (h *MailHandler) Simulate(c *fiber.Ctx) error {
	if h.feed == nil {
		return fiber.NewError(fiber.StatusNotFound, "simulation feed not enabled")
	}
	var req dto.SimulateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if req.From == "" || req.Subject == "" {
		return util.NewValidationError("from and subject are required", nil)
	}
	h.feed.Enqueue(channel.InboundEmail{
		MessageID: req.MessageID,
		From:      req.From,
		FromName:  req.FromName,
		Subject:   req.Subject,
		Text:      req.Text,
		Date:      time.Now().UTC(),
	})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}
