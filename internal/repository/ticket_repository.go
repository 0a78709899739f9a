package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoldai/helpdesk/internal/domain"
)

// TicketFilter narrows List queries. Zero values mean "no constraint".
type TicketFilter struct {
	ClientID     string
	OperatorID   string
	DepartmentID string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Channel      domain.TicketChannel
	SearchTerm   string
	Limit        int
	Offset       int
}

// TicketStats aggregates counters for the operator dashboard.
type TicketStats struct {
	Total              int64
	ByStatus           map[domain.TicketStatus]int64
	ByPriority         map[domain.TicketPriority]int64
	ByChannel          map[domain.TicketChannel]int64
	ByLanguage         map[domain.Language]int64
	AutoResolved       int64
	SLABreached        int64
	AvgResolutionHours float64
}

// TicketRepository provides persistence for tickets.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, t *domain.Ticket) error
	UpdateSummary(ctx context.Context, id, summary string) error
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository creates a PostgreSQL-backed ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, subject, description, status, priority, channel, language,
	category, sentiment, summary, suggested_reply,
	client_id, operator_id, department_id,
	sla_deadline, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, subject, description, status, priority, channel, language,
			category, sentiment, summary, suggested_reply,
			client_id, operator_id, department_id,
			sla_deadline, created_at, updated_at, resolved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17, $18
		)`
	_, err := r.pool.Exec(ctx, query,
		t.ID, t.Subject, t.Description, t.Status, t.Priority, t.Channel, t.Language,
		t.Category, t.Sentiment, t.Summary, t.SuggestedReply,
		t.ClientID, t.OperatorID, t.DepartmentID,
		t.SLADeadline, t.CreatedAt, t.UpdatedAt, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ClientID != "" {
		conds = append(conds, "client_id = "+arg(filter.ClientID))
	}
	if filter.OperatorID != "" {
		conds = append(conds, "operator_id = "+arg(filter.OperatorID))
	}
	if filter.DepartmentID != "" {
		conds = append(conds, "department_id = "+arg(filter.DepartmentID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if len(filter.Priorities) > 0 {
		priorities := make([]string, len(filter.Priorities))
		for i, p := range filter.Priorities {
			priorities[i] = string(p)
		}
		conds = append(conds, "priority = ANY("+arg(priorities)+")")
	}
	if filter.Channel != "" {
		conds = append(conds, "channel = "+arg(string(filter.Channel)))
	}
	if filter.SearchTerm != "" {
		p := arg("%" + filter.SearchTerm + "%")
		conds = append(conds, "(subject ILIKE "+p+" OR description ILIKE "+p+")")
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// Urgent work first, then newest.
	query += `
		ORDER BY CASE priority
			WHEN 'URGENT' THEN 4
			WHEN 'HIGH' THEN 3
			WHEN 'MEDIUM' THEN 2
			ELSE 1
		END DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, t *domain.Ticket) error {
	query := `
		UPDATE tickets SET
			subject = $2, description = $3, status = $4, priority = $5,
			category = $6, sentiment = $7, summary = $8, suggested_reply = $9,
			operator_id = $10, department_id = $11,
			updated_at = now(), resolved_at = $12
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.Subject, t.Description, t.Status, t.Priority,
		t.Category, t.Sentiment, t.Summary, t.SuggestedReply,
		t.OperatorID, t.DepartmentID, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets SET summary = $2, updated_at = now() WHERE id = $1`, id, summary)
	if err != nil {
		return fmt.Errorf("update ticket summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	stats := &TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
		ByChannel:  make(map[domain.TicketChannel]int64),
		ByLanguage: make(map[domain.Language]int64),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ticket stats by status: %w", err)
	}
	for rows.Next() {
		var status domain.TicketStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[status] = n
		stats.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("ticket stats by priority: %w", err)
	}
	for rows.Next() {
		var priority domain.TicketPriority
		var n int64
		if err := rows.Scan(&priority, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByPriority[priority] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT channel, COUNT(*) FROM tickets GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("ticket stats by channel: %w", err)
	}
	for rows.Next() {
		var channel domain.TicketChannel
		var n int64
		if err := rows.Scan(&channel, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByChannel[channel] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT language, COUNT(*) FROM tickets GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("ticket stats by language: %w", err)
	}
	for rows.Next() {
		var language domain.Language
		var n int64
		if err := rows.Scan(&language, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByLanguage[language] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'RESOLVED' AND operator_id IS NULL),
			COUNT(*) FILTER (WHERE sla_deadline < now()
				AND status NOT IN ('RESOLVED', 'CLOSED')),
			COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0)
				FILTER (WHERE resolved_at IS NOT NULL), 0)
		FROM tickets`).Scan(&stats.AutoResolved, &stats.SLABreached, &stats.AvgResolutionHours)
	if err != nil {
		return nil, fmt.Errorf("ticket stats aggregates: %w", err)
	}
	return stats, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.Channel, &t.Language,
		&t.Category, &t.Sentiment, &t.Summary, &t.SuggestedReply,
		&t.ClientID, &t.OperatorID, &t.DepartmentID,
		&t.SLADeadline, &t.CreatedAt, &t.UpdatedAt, &t.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
