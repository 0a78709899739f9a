package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/notify"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/internal/service"
)

// maxEmailBodyLength caps what one inbound email may contribute to a ticket
// or message.
const maxEmailBodyLength = 5000

// EmailChannel turns mailbox traffic into tickets and conversation messages.
type EmailChannel struct {
	feed     MailFeed
	dedup    DedupStore
	dedupTTL time.Duration
	users    repository.UserRepository
	tickets  repository.TicketRepository
	intake   *service.IntakeService
	messages *service.MessageService
	sink     notify.Sink
	logger   *zap.Logger
}

// EmailChannelOptions bundles the adapter's collaborators.
type EmailChannelOptions struct {
	Feed     MailFeed
	Dedup    DedupStore
	DedupTTL time.Duration
	Users    repository.UserRepository
	Tickets  repository.TicketRepository
	Intake   *service.IntakeService
	Messages *service.MessageService
	Sink     notify.Sink
	Logger   *zap.Logger
}

// NewEmailChannel creates the mailbox adapter.
func NewEmailChannel(opts EmailChannelOptions) *EmailChannel {
	return &EmailChannel{
		feed:     opts.Feed,
		dedup:    opts.Dedup,
		dedupTTL: opts.DedupTTL,
		users:    opts.Users,
		tickets:  opts.Tickets,
		intake:   opts.Intake,
		messages: opts.Messages,
		sink:     opts.Sink,
		logger:   opts.Logger,
	}
}

// Process fetches unread mail and routes each message. One bad email never
// aborts the batch; errors are logged and the message is skipped.
func (c *EmailChannel) Process(ctx context.Context) (int, error) {
	emails, err := c.feed.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("mail fetch: %w", err)
	}

	handled := 0
	for _, email := range emails {
		if err := c.handle(ctx, email); err != nil {
			c.logger.Error("inbound email not processed",
				zap.String("message_id", email.MessageID),
				zap.String("from", email.From),
				zap.Error(err))
			continue
		}
		handled++
	}
	return handled, nil
}

func (c *EmailChannel) handle(ctx context.Context, email InboundEmail) error {
	if email.MessageID != "" {
		first, err := c.dedup.MarkSeen(ctx, email.MessageID, c.dedupTTL)
		if err != nil {
			return fmt.Errorf("dedup: %w", err)
		}
		if !first {
			c.logger.Debug("duplicate email skipped", zap.String("message_id", email.MessageID))
			return nil
		}
	}

	from := strings.ToLower(strings.TrimSpace(email.From))
	if from == "" {
		return fmt.Errorf("empty sender address")
	}
	body := strings.TrimSpace(email.Text)
	if len([]rune(body)) > maxEmailBodyLength {
		body = string([]rune(body)[:maxEmailBodyLength])
	}

	// A correlation tag in the subject routes the mail into an existing
	// conversation; anything else opens a new ticket.
	if ticketID := domain.ExtractTicketID(email.Subject); ticketID != "" {
		appended, err := c.appendReply(ctx, ticketID, from, body)
		if err != nil {
			return err
		}
		if appended {
			return nil
		}
	}
	return c.createTicket(ctx, email, from, body)
}

// appendReply routes a correlated reply into its ticket. Returns false when
// the tag does not resolve to a usable conversation, in which case the mail
// falls through to ticket creation.
func (c *EmailChannel) appendReply(ctx context.Context, ticketID, from, body string) (bool, error) {
	ticket, err := c.tickets.GetByID(ctx, ticketID)
	if err == pgx.ErrNoRows {
		c.logger.Warn("correlation tag references unknown ticket", zap.String("ticket_id", ticketID))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		c.logger.Info("reply to closed ticket, opening new one", zap.String("ticket_id", ticketID))
		return false, nil
	}

	sender, err := c.users.GetByID(ctx, ticket.ClientID)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(sender.Email, from) {
		c.logger.Warn("correlated reply from unexpected sender",
			zap.String("ticket_id", ticketID),
			zap.String("from", from))
		return false, nil
	}

	if body == "" {
		return false, fmt.Errorf("empty reply body")
	}
	_, _, err = c.messages.Append(ctx, service.AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   sender.ID,
		SenderRole: domain.UserRoleClient,
		Content:    body,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *EmailChannel) createTicket(ctx context.Context, email InboundEmail, from, body string) error {
	subject := strings.TrimSpace(email.Subject)
	if subject == "" {
		subject = "Обращение по электронной почте"
	}
	if body == "" {
		body = subject
	}

	sender, err := c.ensureUser(ctx, from, email.FromName)
	if err != nil {
		return err
	}

	result, err := c.intake.Create(ctx, service.CreateTicketInput{
		Subject:     subject,
		Description: body,
		Channel:     domain.TicketChannelEmail,
		ClientID:    sender.ID,
		Language:    DetectLanguage(subject + " " + body),
	})
	if err != nil {
		return err
	}

	c.sendConfirmation(ctx, from, result)
	return nil
}

// sendConfirmation acknowledges the new ticket by mail. The subject carries
// the correlation tag so a plain reply lands back in the conversation.
// Delivery failure is logged, never propagated.
func (c *EmailChannel) sendConfirmation(ctx context.Context, to string, result *service.IntakeResult) {
	ticket := result.Ticket
	subject := fmt.Sprintf("%s %s", domain.FormatTicketTag(ticket.ID), ticket.Subject)

	var text string
	if result.AutoResolved {
		text = result.BotReply +
			"\n\nЕсли проблема не решена, просто ответьте на это письмо."
	} else {
		text = "Ваше обращение зарегистрировано. Оператор свяжется с вами в ближайшее время." +
			"\n\nЧтобы дополнить обращение, просто ответьте на это письмо."
	}

	if err := c.sink.Send(ctx, notify.OutboundEmail{To: to, Subject: subject, Text: text}); err != nil {
		c.logger.Error("confirmation email not sent",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}

func (c *EmailChannel) ensureUser(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := c.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		}
	}
	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      domain.UserRoleClient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.users.Create(ctx, user); err != nil {
		return nil, err
	}
	c.logger.Info("client created from email", zap.String("email", email))
	return user, nil
}
