package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoldai/helpdesk/internal/domain"
)

// TicketMessageRepository provides persistence for ticket messages.
type TicketMessageRepository interface {
	Create(ctx context.Context, m *domain.TicketMessage) error
	// CreateWithStatus appends a message and, when newStatus is non-nil,
	// moves the ticket in the same transaction.
	CreateWithStatus(ctx context.Context, m *domain.TicketMessage, newStatus *domain.TicketStatus) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository creates a PostgreSQL-backed message repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

const insertMessageSQL = `
	INSERT INTO ticket_messages (id, ticket_id, sender_id, content, is_ai_generated, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *ticketMessageRepository) Create(ctx context.Context, m *domain.TicketMessage) error {
	_, err := r.pool.Exec(ctx, insertMessageSQL,
		m.ID, m.TicketID, m.SenderID, m.Content, m.IsAIGenerated, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket message: %w", err)
	}
	return nil
}

func (r *ticketMessageRepository) CreateWithStatus(ctx context.Context, m *domain.TicketMessage, newStatus *domain.TicketStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertMessageSQL,
		m.ID, m.TicketID, m.SenderID, m.Content, m.IsAIGenerated, m.CreatedAt); err != nil {
		return fmt.Errorf("insert ticket message: %w", err)
	}
	if newStatus != nil {
		// Moving out of RESOLVED reopens the ticket, so the resolution
		// stamp is cleared in the same statement.
		tag, err := tx.Exec(ctx, `
			UPDATE tickets SET
				status = $2,
				updated_at = now(),
				resolved_at = CASE WHEN $2 = 'RESOLVED' THEN resolved_at ELSE NULL END
			WHERE id = $1`,
			m.TicketID, *newStatus)
		if err != nil {
			return fmt.Errorf("update ticket status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}
	return tx.Commit(ctx)
}

const messageColumns = `id, ticket_id, sender_id, content, is_ai_generated, created_at`

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM ticket_messages WHERE ticket_id = $1 ORDER BY created_at ASC`,
		ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListRecent returns the last limit messages in chronological order.
func (r *ticketMessageRepository) ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.TicketMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM ticket_messages
			WHERE ticket_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent ORDER BY created_at ASC`,
		ticketID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent ticket messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.TicketMessage, error) {
	var msgs []domain.TicketMessage
	for rows.Next() {
		var m domain.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.Content, &m.IsAIGenerated, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
