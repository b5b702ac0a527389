package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// таблицы снимка, без которых отчеты из БД не строятся
var requiredTables = []string{"pull_requests", "timeline_events", "review_comments"}

// проверяет, что схема снимка применена
// принимает: контекст и подключение к базе данных
// возвращает: nil если все таблицы на месте, иначе ошибку со списком отсутствующих
func CheckSchema(ctx context.Context, db *sql.DB) error {
	var result *multierror.Error

	for _, table := range requiredTables {
		var exists bool
		err := db.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", table, err)
		}
		if !exists {
			result = multierror.Append(result, fmt.Errorf("table %s does not exist", table))
		}
	}

	return result.ErrorOrNil()
}
