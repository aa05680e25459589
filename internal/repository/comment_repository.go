package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// CommentRepository manages complaint thread comments. Comments are append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO complaint_comments (complaint_id, user_id, user_name, user_role, avatar, text)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, seq, timestamp`
	return r.pool.QueryRow(ctx, query,
		comment.ComplaintID,
		comment.AuthorID,
		comment.AuthorName,
		comment.AuthorRole,
		comment.AuthorAvatar,
		comment.Text,
	).Scan(&comment.ID, &comment.Seq, &comment.CreatedAt)
}

func (r *commentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error) {
	byComplaint, err := listCommentsFor(ctx, r.pool, []string{complaintID})
	if err != nil {
		return nil, err
	}
	if comments := byComplaint[complaintID]; comments != nil {
		return comments, nil
	}
	return []domain.Comment{}, nil
}

// listCommentsFor loads the comments of several complaints at once, grouped by complaint
// and ordered by insertion sequence.
func listCommentsFor(ctx context.Context, pool *pgxpool.Pool, complaintIDs []string) (map[string][]domain.Comment, error) {
	const query = `
        SELECT id, complaint_id, seq, user_id, user_name, user_role, avatar, text, timestamp
        FROM complaint_comments WHERE complaint_id = ANY($1::uuid[]) ORDER BY seq ASC`
	rows, err := pool.Query(ctx, query, complaintIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.Comment, len(complaintIDs))
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID,
			&c.ComplaintID,
			&c.Seq,
			&c.AuthorID,
			&c.AuthorName,
			&c.AuthorRole,
			&c.AuthorAvatar,
			&c.Text,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[c.ComplaintID] = append(result[c.ComplaintID], c)
	}
	return result, rows.Err()
}
