package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const ticketColumns = `id, title, description, status, priority, created_by, assigned_to, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, created_by, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedBy,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translateError(err)
}

// Update overwrites the mutable fields. updated_at never moves backwards.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if !validID(ticket.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, assigned_to=$5,
            updated_at=GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')
        WHERE id=$6
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return translateError(err)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildTicketListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// buildTicketListQuery renders the filter into SQL with the same semantics
// as TicketFilter.Matches and TicketFilter.Less.
func buildTicketListQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if term := filter.SearchTerm(); term != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
		likeArg := len(args)
		args = append(args, term)
		clauses = append(clauses, fmt.Sprintf(`(LOWER(title) LIKE $%d ESCAPE '\' OR id::text = $%d)`, likeArg, len(args)))
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	order := fmt.Sprintf("created_at %s, id %s", direction, direction)
	if filter.SortBy == SortByTitle {
		order = fmt.Sprintf(`LOWER(title) COLLATE "C" %s, %s`, direction, order)
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s`,
		ticketColumns, strings.Join(clauses, " AND "), order)
	return query, args
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
