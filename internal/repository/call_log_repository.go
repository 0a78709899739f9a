package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoldai/helpdesk/internal/domain"
)

// CallLogRepository provides persistence for PBX call records.
type CallLogRepository interface {
	Create(ctx context.Context, c *domain.CallLog) error
	GetByCallID(ctx context.Context, callID string) (*domain.CallLog, error)
	Update(ctx context.Context, c *domain.CallLog) error
	LinkTicket(ctx context.Context, callID, ticketID string) error
	SetRating(ctx context.Context, callID string, rating int) error
}

type callLogRepository struct {
	pool *pgxpool.Pool
}

// NewCallLogRepository creates a PostgreSQL-backed call log repository.
func NewCallLogRepository(pool *pgxpool.Pool) CallLogRepository {
	return &callLogRepository{pool: pool}
}

const callLogColumns = `id, call_id, phone, direction, status, ticket_id,
	operator_ext, group_name, duration_seconds, recording_url, rating,
	started_at, answered_at, ended_at, created_at`

func (r *callLogRepository) Create(ctx context.Context, c *domain.CallLog) error {
	query := `
		INSERT INTO call_logs (
			id, call_id, phone, direction, status, ticket_id,
			operator_ext, group_name, duration_seconds, recording_url, rating,
			started_at, answered_at, ended_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.CallID, c.Phone, c.Direction, c.Status, c.TicketID,
		c.OperatorExt, c.GroupName, c.Duration, c.RecordingURL, c.Rating,
		c.StartedAt, c.AnsweredAt, c.EndedAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

func (r *callLogRepository) GetByCallID(ctx context.Context, callID string) (*domain.CallLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+callLogColumns+` FROM call_logs WHERE call_id = $1`, callID)
	var c domain.CallLog
	err := row.Scan(&c.ID, &c.CallID, &c.Phone, &c.Direction, &c.Status, &c.TicketID,
		&c.OperatorExt, &c.GroupName, &c.Duration, &c.RecordingURL, &c.Rating,
		&c.StartedAt, &c.AnsweredAt, &c.EndedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *callLogRepository) Update(ctx context.Context, c *domain.CallLog) error {
	query := `
		UPDATE call_logs SET
			status = $2, operator_ext = $3, group_name = $4,
			duration_seconds = $5, recording_url = $6,
			answered_at = $7, ended_at = $8
		WHERE call_id = $1`
	tag, err := r.pool.Exec(ctx, query,
		c.CallID, c.Status, c.OperatorExt, c.GroupName,
		c.Duration, c.RecordingURL, c.AnsweredAt, c.EndedAt)
	if err != nil {
		return fmt.Errorf("update call log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *callLogRepository) LinkTicket(ctx context.Context, callID, ticketID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE call_logs SET ticket_id = $2 WHERE call_id = $1`, callID, ticketID)
	if err != nil {
		return fmt.Errorf("link call to ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *callLogRepository) SetRating(ctx context.Context, callID string, rating int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE call_logs SET rating = $2 WHERE call_id = $1`, callID, rating)
	if err != nil {
		return fmt.Errorf("rate call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
