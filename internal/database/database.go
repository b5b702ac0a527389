package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// конфигурация подключения к базе данных
type Config struct {
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required,numeric"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
}

// строка подключения в формате lib/pq
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// устанавливает подключение к базе данных с повторными попытками
// принимает: контекст и конфигурацию подключения к базе данных
// возвращает: подключение к БД или ошибку после исчерпания попыток
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	return connectDSN(ctx, cfg.DSN())
}

func connectDSN(ctx context.Context, dsn string) (*sql.DB, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.Info("connecting to database", "attempt", attempt, "max_attempts", maxAttempts)

		var db *sql.DB
		db, err = open(ctx, dsn)
		if err == nil {
			slog.Info("connected to database")
			return db, nil
		}
		slog.Warn("database connection failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, err)
}

func open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
