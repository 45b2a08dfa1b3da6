package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source
	_ "github.com/jackc/pgx/v5/stdlib"                   // PostgreSQL driver
	"go.uber.org/zap"
)

func Connect(connStr string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("database.Connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("database.Connect ping: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL database")
	return db, nil
}

// Migrate applies pending migrations from sourceURL (e.g. file://migrations).
func Migrate(db *sql.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("database.Migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "calc_service", driver)
	if err != nil {
		return fmt.Errorf("database.Migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database.Migrate up: %w", err)
	}

	logger.Info("Database migrations applied")
	return nil
}
