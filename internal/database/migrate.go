package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

var requiredTables = []string{
	"users",
	"workspace_members",
	"refresh_tokens",
	"auth_events",
}

// EnsureSchema applies the embedded schema when required tables are missing.
// The DDL uses IF NOT EXISTS throughout, so re-running is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is not initialized")
	}

	exists, err := hasAllRequiredTables(ctx, db)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}
	if exists {
		return nil
	}

	slog.Info("database schema missing tables; applying initial migration")
	if _, err := db.ExecContext(ctx, initialMigrationSQL); err != nil {
		return fmt.Errorf("apply initial migration: %w", err)
	}

	exists, err = hasAllRequiredTables(ctx, db)
	if err != nil {
		return fmt.Errorf("re-check tables after migration: %w", err)
	}
	if !exists {
		return fmt.Errorf("schema initialization incomplete: required tables are still missing")
	}

	slog.Info("database schema ensured")
	return nil
}

func hasAllRequiredTables(ctx context.Context, db *sql.DB) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = 'public'
	  AND table_name = $1
)
`
	for _, table := range requiredTables {
		var ok bool
		if err := db.QueryRowContext(ctx, q, table).Scan(&ok); err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
