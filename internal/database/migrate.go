package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// каталог миграций по умолчанию, относительно рабочей директории
const DefaultMigrationsDir = "migrations"

// применяет миграции к базе данных
// принимает: подключение к БД и каталог с файлами миграций
// возвращает: ошибку в случае неудачи или nil при успешном выполнении
func RunMigrations(db *sql.DB, dir string) error {
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	// получаем абсолютный путь к миграциям
	migrationsPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("could not get absolute path to migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("could not get migration version: %w", err)
	}

	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
