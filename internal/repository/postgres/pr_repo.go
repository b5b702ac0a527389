package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"review-response-metrics/internal/models"
)

// предоставляет методы для работы со снимком Pull Request в базе данных
type PRRepository struct {
	db *sql.DB
}

// создает и возвращает новый экземпляр PRRepository
// принимает: подключение к базе данных для инициализации репозитория
// возвращает: указатель на созданный PRRepository
func NewPRRepository(db *sql.DB) *PRRepository {
	return &PRRepository{db: db}
}

// сохраняет или обновляет пачку Pull Request в одной транзакции;
// таймлайн обновленного PR считается незагруженным до следующего ReplaceEvents
// принимает: контекст и список PR, полученных от платформы
// возвращает: ошибку в случае неудачного выполнения транзакции
func (r *PRRepository) UpsertPRs(ctx context.Context, prs []models.PullRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pull_requests (id, repository, number, author, state, created_at, updated_at, merged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			author = EXCLUDED.author,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at,
			merged_at = EXCLUDED.merged_at,
			timeline_synced_at = NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, pr := range prs {
		var mergedAt interface{}
		if pr.MergedAt != nil {
			mergedAt = *pr.MergedAt
		}
		_, err = stmt.ExecContext(ctx,
			pr.ID, pr.Repository, pr.Number, pr.Author, pr.State, pr.CreatedAt, pr.UpdatedAt, mergedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert pull request %s#%d: %w", pr.Repository, pr.Number, err)
		}
	}

	return tx.Commit()
}

// возвращает PR, созданные или обновленные после since, без закрытых несмерженных
// принимает: контекст и нижнюю границу периода
// возвращает: список PR, упорядоченный по репозиторию и номеру, или ошибку запроса
func (r *PRRepository) ListPRsSince(ctx context.Context, since time.Time) ([]models.PullRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, repository, number, author, state, created_at, updated_at, merged_at
		FROM pull_requests
		WHERE (updated_at >= $1 OR created_at >= $1)
		  AND NOT (state = 'closed' AND merged_at IS NULL)
		ORDER BY repository, number
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query pull requests: %w", err)
	}
	defer rows.Close()

	var prs []models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		var mergedAt sql.NullTime
		if err := rows.Scan(
			&pr.ID, &pr.Repository, &pr.Number, &pr.Author, &pr.State,
			&pr.CreatedAt, &pr.UpdatedAt, &mergedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pull request: %w", err)
		}
		pr.CreatedAt = pr.CreatedAt.UTC()
		pr.UpdatedAt = pr.UpdatedAt.UTC()
		if mergedAt.Valid {
			merged := mergedAt.Time.UTC()
			pr.MergedAt = &merged
		}
		prs = append(prs, pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pull requests: %w", err)
	}

	return prs, nil
}
