package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema crea las tablas si no existen. El DDL es portable entre
// Postgres y SQLite salvo la columna id autoincremental.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	idCol := "BIGSERIAL PRIMARY KEY"
	if db.DriverName() == "sqlite3" {
		idCol = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS pet_lost_reports (
				id %s,
				pet_type TEXT NOT NULL,
				breed TEXT NOT NULL,
				color TEXT NOT NULL,
				gender TEXT NOT NULL,
				age TEXT NOT NULL DEFAULT '',
				features TEXT NOT NULL,
				lost_time TIMESTAMP NOT NULL,
				lost_location_text TEXT NOT NULL,
				latitude DOUBLE PRECISION,
				longitude DOUBLE PRECISION,
				contact_info TEXT NOT NULL,
				photos TEXT NOT NULL DEFAULT '[]',
				is_found BOOLEAN NOT NULL DEFAULT FALSE,
				found_time TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS pet_found_reports (
				id %s,
				pet_type TEXT NOT NULL,
				breed TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL,
				gender TEXT NOT NULL,
				features TEXT NOT NULL,
				found_time TIMESTAMP NOT NULL,
				found_location_text TEXT NOT NULL,
				latitude DOUBLE PRECISION,
				longitude DOUBLE PRECISION,
				contact_info TEXT NOT NULL,
				photos TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_lost_created_at ON pet_lost_reports (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_found_created_at ON pet_found_reports (created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqldb: ensure schema: %w", err)
		}
	}
	return nil
}
