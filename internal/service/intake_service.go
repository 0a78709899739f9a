package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/ai"
	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/faq"
	"github.com/qoldai/helpdesk/internal/observability"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// autoResolveDisclaimer is appended to every bot-authored resolution so the
// client knows a reply will reopen the ticket.
const autoResolveDisclaimer = "\n\n---\n*Этот запрос был автоматически решён AI-ассистентом. Если вам нужна дополнительная помощь, просто ответьте на это сообщение.*"

// CreateTicketInput carries everything intake needs to open a ticket.
type CreateTicketInput struct {
	Subject     string
	Description string
	Channel     domain.TicketChannel
	ClientID    string
	// Language overrides classifier detection when the channel already
	// knows it (mailbox adapter). Empty means trust the classifier.
	Language domain.Language
}

// IntakeResult is what intake hands back to the caller.
type IntakeResult struct {
	Ticket       *domain.Ticket
	AutoResolved bool
	BotReply     string
}

// IntakeService runs the ticket creation pipeline: classify, FAQ match,
// route, optionally auto-resolve.
type IntakeService struct {
	deps      IntakeDependencies
	cfg       config.IntakeConfig
	botOnce   sync.Once
	botUserID string
	botErr    error
}

// IntakeDependencies bundles intake collaborators.
type IntakeDependencies struct {
	Tickets     repository.TicketRepository
	Messages    repository.TicketMessageRepository
	Users       repository.UserRepository
	Departments repository.DepartmentRepository
	Classifier  ai.Classifier
	FAQ         *faq.Matcher
	Dispatcher  *events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewIntakeService creates the intake pipeline.
func NewIntakeService(deps IntakeDependencies, cfg config.IntakeConfig) *IntakeService {
	return &IntakeService{deps: deps, cfg: cfg}
}

// BotUserID lazily resolves (creating on first use) the bot identity that
// authors auto-replies.
func (s *IntakeService) BotUserID(ctx context.Context) (string, error) {
	s.botOnce.Do(func() {
		user, err := s.deps.Users.GetByEmail(ctx, s.cfg.BotEmail)
		if err == nil {
			s.botUserID = user.ID
			return
		}
		now := time.Now().UTC()
		bot := &domain.User{
			ID:        uuid.NewString(),
			Email:     s.cfg.BotEmail,
			Name:      s.cfg.BotName,
			Role:      domain.UserRoleOperator,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.deps.Users.Create(ctx, bot); err != nil {
			s.botErr = err
			return
		}
		s.botUserID = bot.ID
	})
	return s.botUserID, s.botErr
}

// Create runs the full intake pipeline for a new ticket.
func (s *IntakeService) Create(ctx context.Context, input CreateTicketInput) (*IntakeResult, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, util.NewValidationError("subject and description are required", nil)
	}
	if input.Channel == "" {
		input.Channel = domain.TicketChannelWeb
	}

	client, err := s.deps.Users.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, util.MapError(err)
	}

	// Classification failure is never fatal: degrade to the conservative
	// default and carry on.
	cls, err := s.deps.Classifier.Classify(ctx, subject, description)
	if err != nil {
		s.deps.Logger.Warn("classifier unavailable, using defaults",
			zap.String("channel", string(input.Channel)),
			zap.Error(err))
		s.deps.Metrics.AIFailure()
		cls = ai.DefaultClassification()
	}

	language := cls.Language
	if input.Language != "" {
		language = input.Language
	}

	faqMatch := s.deps.FAQ.Match(subject, description, language)

	category := cls.Category
	if faqMatch.IsFAQ {
		category = faqMatch.Category
	}

	departmentID := s.matchDepartment(ctx, cls.SuggestedDepartment)

	autoResolve := faqMatch.IsFAQ || (cls.CanAutoResolve && cls.Confidence >= s.cfg.AutoResolveAt)

	// The FAQ answer wins over the classifier's draft. Whatever is chosen
	// goes out as the bot's first message; auto-resolution only decides the
	// status and the disclaimer.
	botReply := cls.AutoReply
	if faqMatch.IsFAQ {
		botReply = faqMatch.Answer
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    cls.Priority,
		Channel:     input.Channel,
		Language:    language,
		ClientID:    client.ID,
		SLADeadline: now.Add(s.cfg.SLAOffset()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if category != "" {
		ticket.Category = &category
	}
	if cls.Sentiment != "" {
		sentiment := cls.Sentiment
		ticket.Sentiment = &sentiment
	}
	if departmentID != "" {
		ticket.DepartmentID = &departmentID
	}
	if botReply != "" {
		reply := botReply
		ticket.SuggestedReply = &reply
	}
	if autoResolve {
		ticket.Status = domain.TicketStatusResolved
		resolvedAt := now
		ticket.ResolvedAt = &resolvedAt
	}

	if err := s.deps.Tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	if botReply != "" {
		content := botReply
		if autoResolve {
			content += autoResolveDisclaimer
		}
		if err := s.appendBotReply(ctx, ticket.ID, content); err != nil {
			// The ticket exists; losing the bot message downgrades the
			// experience but must not fail the request.
			s.deps.Logger.Error("bot reply not recorded",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	s.deps.Metrics.TicketCreated(autoResolve)
	s.deps.Dispatcher.Dispatch(events.Event{
		Name: events.TicketCreated,
		Payload: events.TicketCreatedPayload{
			Ticket:       ticket,
			ClientEmail:  client.Email,
			AutoResolved: autoResolve,
		},
	})
	s.deps.Logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("channel", string(input.Channel)),
		zap.String("priority", string(ticket.Priority)),
		zap.Bool("auto_resolved", autoResolve))

	return &IntakeResult{Ticket: ticket, AutoResolved: autoResolve, BotReply: botReply}, nil
}

// CreateFromCall opens a phone-channel ticket without running the
// classifier; call metadata already tells the story.
func (s *IntakeService) CreateFromCall(ctx context.Context, clientID, phone string, missed bool) (*domain.Ticket, error) {
	client, err := s.deps.Users.GetByID(ctx, clientID)
	if err != nil {
		return nil, util.MapError(err)
	}

	subject := "Звонок с номера " + phone
	description := "Обращение по телефону. Оператору необходимо внести детали разговора."
	priority := domain.TicketPriorityMedium
	if missed {
		subject = "Пропущенный звонок с номера " + phone
		description = "Клиент не дозвонился до оператора. Требуется обратный звонок."
		priority = domain.TicketPriorityHigh
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Channel:     domain.TicketChannelPhone,
		Language:    domain.LanguageRU,
		ClientID:    client.ID,
		SLADeadline: now.Add(s.cfg.SLAOffset()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	s.deps.Metrics.TicketCreated(false)
	s.deps.Dispatcher.Dispatch(events.Event{
		Name: events.TicketCreated,
		Payload: events.TicketCreatedPayload{
			Ticket:      ticket,
			ClientEmail: client.Email,
		},
	})
	s.deps.Logger.Info("ticket created from call",
		zap.String("ticket_id", ticket.ID),
		zap.String("phone", phone),
		zap.Bool("missed", missed))
	return ticket, nil
}

// appendBotReply records the bot message directly. The status recompute rules
// apply to conversation traffic, not to the intake bot's own resolution note.
func (s *IntakeService) appendBotReply(ctx context.Context, ticketID, content string) error {
	botID, err := s.BotUserID(ctx)
	if err != nil {
		return err
	}
	msg := &domain.TicketMessage{
		ID:            uuid.NewString(),
		TicketID:      ticketID,
		SenderID:      botID,
		Content:       content,
		IsAIGenerated: true,
		CreatedAt:     time.Now().UTC(),
	}
	return s.deps.Messages.Create(ctx, msg)
}

// matchDepartment maps the classifier's free-text suggestion onto an active
// department by case-insensitive containment either way. No match routes to
// the unassigned pool.
func (s *IntakeService) matchDepartment(ctx context.Context, suggested string) string {
	suggested = strings.ToLower(strings.TrimSpace(suggested))
	if suggested == "" {
		return ""
	}
	departments, err := s.deps.Departments.ListActive(ctx)
	if err != nil {
		s.deps.Logger.Warn("department lookup failed", zap.Error(err))
		return ""
	}
	for _, dept := range departments {
		name := strings.ToLower(dept.Name)
		if strings.Contains(name, suggested) || strings.Contains(suggested, name) {
			return dept.ID
		}
	}
	return ""
}
