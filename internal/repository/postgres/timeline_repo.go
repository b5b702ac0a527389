package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"review-response-metrics/internal/models"
)

// хранит нормализованные события таймлайна PR
type TimelineRepository struct {
	db *sql.DB
}

// создает и возвращает новый экземпляр TimelineRepository
// принимает: подключение к базе данных для инициализации репозитория
// возвращает: указатель на созданный TimelineRepository
func NewTimelineRepository(db *sql.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// заменяет события PR и отмечает таймлайн как загруженный
// принимает: контекст, ID PR и его нормализованные события
// возвращает: ошибку в случае неудачного выполнения транзакции
func (r *TimelineRepository) ReplaceEvents(ctx context.Context, prID int64, events []models.TimelineEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM timeline_events WHERE pull_request_id = $1", prID); err != nil {
		return fmt.Errorf("failed to delete timeline events: %w", err)
	}

	for _, ev := range events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO timeline_events (pull_request_id, seq, event_type, occurred_at, reviewer)
			VALUES ($1, $2, $3, $4, $5)
		`, prID, ev.Seq, string(ev.Type), ev.At, ev.Reviewer)
		if err != nil {
			return fmt.Errorf("failed to insert timeline event %d: %w", ev.Seq, err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE pull_requests SET timeline_synced_at = NOW() WHERE id = $1", prID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark timeline synced: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pull request %d not found", prID)
	}

	return tx.Commit()
}

// загружает события для набора PR
// принимает: контекст и ID PR
// возвращает: события по ID PR; PR без загруженного таймлайна в результат не попадают
func (r *TimelineRepository) LoadEvents(ctx context.Context, prIDs []int64) (map[int64][]models.TimelineEvent, error) {
	result := make(map[int64][]models.TimelineEvent, len(prIDs))
	if len(prIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, e.seq, e.event_type, e.occurred_at, e.reviewer
		FROM pull_requests p
		LEFT JOIN timeline_events e ON e.pull_request_id = p.id
		WHERE p.id = ANY($1) AND p.timeline_synced_at IS NOT NULL
		ORDER BY p.id, e.seq
	`, pq.Array(prIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			prID       int64
			seq        sql.NullInt64
			eventType  sql.NullString
			occurredAt sql.NullTime
			reviewer   sql.NullString
		)
		if err := rows.Scan(&prID, &seq, &eventType, &occurredAt, &reviewer); err != nil {
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}

		events, ok := result[prID]
		if !ok {
			// PR с загруженным, но пустым таймлайном
			events = []models.TimelineEvent{}
		}
		if seq.Valid {
			events = append(events, models.TimelineEvent{
				Type:     models.EventType(eventType.String),
				At:       occurredAt.Time.UTC(),
				Reviewer: reviewer.String,
				Seq:      int(seq.Int64),
			})
		}
		result[prID] = events
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline events: %w", err)
	}

	return result, nil
}
