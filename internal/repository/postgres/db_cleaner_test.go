//go:build integration

package postgres

import (
	"database/sql"
	"fmt"
)

// таблицы снимка в порядке очистки из-за foreign keys
var snapshotTables = []string{"review_comments", "timeline_events", "pull_requests"}

// полностью очищает тестовую БД
func cleanDatabase(db *sql.DB) error {
	for _, table := range snapshotTables {
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}
