package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/repository"
)

// sendTimeout bounds one outbound delivery from an event handler.
const sendTimeout = 15 * time.Second

// Notifier listens for domain events and emails clients about them.
type Notifier struct {
	users  repository.UserRepository
	sink   Sink
	webURL string
	logger *zap.Logger
}

// NewNotifier creates the notifier.
func NewNotifier(users repository.UserRepository, sink Sink, webURL string, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, sink: sink, webURL: webURL, logger: logger}
}

// Register subscribes the notifier to the dispatcher.
func (n *Notifier) Register(d *events.Dispatcher) {
	d.Subscribe(events.StatusChanged, n.onStatusChanged)
	d.Subscribe(events.MessageAdded, n.onMessageAdded)
}

func (n *Notifier) onStatusChanged(event events.Event) {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok || payload.To != domain.TicketStatusResolved {
		return
	}
	ticket := payload.Ticket

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	email, ok := n.clientEmail(ctx, ticket.ClientID)
	if !ok {
		return
	}
	n.send(ctx, OutboundEmail{
		To:      email,
		Subject: fmt.Sprintf("%s Ваше обращение решено", domain.FormatTicketTag(ticket.ID)),
		Text: "Ваше обращение \"" + ticket.Subject + "\" отмечено как решённое." +
			"\n\nЕсли проблема осталась, ответьте на это письмо и обращение будет открыто снова." +
			"\n\n" + n.webURL + "/tickets/" + ticket.ID,
	}, ticket.ID)
}

// onMessageAdded relays operator replies to email-channel clients. Web
// clients see replies in the app, phone clients get called back.
func (n *Notifier) onMessageAdded(event events.Event) {
	payload, ok := event.Payload.(events.MessageAddedPayload)
	if !ok || payload.Author == domain.AuthorClient {
		return
	}
	ticket := payload.Ticket
	if ticket.Channel != domain.TicketChannelEmail {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	email, ok := n.clientEmail(ctx, ticket.ClientID)
	if !ok {
		return
	}
	n.send(ctx, OutboundEmail{
		To:      email,
		Subject: fmt.Sprintf("%s %s", domain.FormatTicketTag(ticket.ID), ticket.Subject),
		Text:    payload.Message.Content,
	}, ticket.ID)
}

func (n *Notifier) clientEmail(ctx context.Context, clientID string) (string, bool) {
	user, err := n.users.GetByID(ctx, clientID)
	if err != nil {
		n.logger.Warn("notification recipient lookup failed",
			zap.String("client_id", clientID),
			zap.Error(err))
		return "", false
	}
	return user.Email, true
}

func (n *Notifier) send(ctx context.Context, email OutboundEmail, ticketID string) {
	if err := n.sink.Send(ctx, email); err != nil {
		n.logger.Error("notification not delivered",
			zap.String("ticket_id", ticketID),
			zap.String("to", email.To),
			zap.Error(err))
	}
}
