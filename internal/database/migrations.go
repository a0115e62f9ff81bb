package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations prepares the backend: goose migrations for Postgres,
// unique indexes for Mongo, nothing for the in-memory store
func RunMigrations(ctx context.Context, store Store, logger *zap.Logger) error {
	switch s := store.(type) {
	case *PostgresStore:
		return runGooseMigrations(s.DB(), logger)
	case *MongoStore:
		logger.Info("Ensuring mongo indexes...")
		if err := s.EnsureIndexes(ctx); err != nil {
			logger.Error("Failed to ensure indexes", zap.Error(err))
			return err
		}
		logger.Info("Indexes ensured successfully")
		return nil
	default:
		logger.Info("Store needs no migrations", zap.String("store", fmt.Sprintf("%T", store)))
		return nil
	}
}

func runGooseMigrations(db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}
