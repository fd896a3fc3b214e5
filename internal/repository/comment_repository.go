package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// Author columns are joined in so that callers never see a bare user id.
const commentSelect = `
        SELECT c.id, c.ticket_id, c.user_id, c.content, c.created_at, c.updated_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM comments c LEFT JOIN users u ON u.id = c.user_id`

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        WITH inserted AS (
            INSERT INTO comments (ticket_id, user_id, content)
            VALUES ($1,$2,$3)
            RETURNING id, created_at, updated_at, user_id
        )
        SELECT i.id, i.created_at, i.updated_at, COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM inserted i LEFT JOIN users u ON u.id = i.user_id`
	err := r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt, &comment.Author.Name, &comment.Author.Email)
	if err != nil {
		return translateError(err)
	}
	comment.Author.ID = comment.UserID
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	comment, err := scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	if !validID(ticketID) {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE c.ticket_id=$1 ORDER BY c.created_at ASC, c.id ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.Author.Name,
		&comment.Author.Email,
	); err != nil {
		return nil, err
	}
	comment.Author.ID = comment.UserID
	return &comment, nil
}
