package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"review-response-metrics/internal/models"
)

// хранит review-комментарии к PR
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// заменяет комментарии одного PR
func (r *CommentRepository) ReplaceComments(ctx context.Context, prID int64, comments []models.ReviewComment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM review_comments WHERE pull_request_id = $1", prID); err != nil {
		return fmt.Errorf("failed to delete review comments: %w", err)
	}

	for _, c := range comments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO review_comments (id, pull_request_id, author, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET pull_request_id = EXCLUDED.pull_request_id
		`, c.ID, prID, c.Author, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert review comment %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// возвращает комментарии к указанным PR
func (r *CommentRepository) ListComments(ctx context.Context, prIDs []int64) ([]models.ReviewComment, error) {
	if len(prIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pull_request_id, author, created_at
		FROM review_comments
		WHERE pull_request_id = ANY($1)
		ORDER BY pull_request_id, created_at
	`, pq.Array(prIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query review comments: %w", err)
	}
	defer rows.Close()

	var comments []models.ReviewComment
	for rows.Next() {
		var c models.ReviewComment
		if err := rows.Scan(&c.ID, &c.PRID, &c.Author, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review comment: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review comments: %w", err)
	}

	return comments, nil
}
