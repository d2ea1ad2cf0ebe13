// Package migration creates the expenses schema used by the pipeline and the dashboard.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"despesas/internal/logger"
)

type step struct {
	Name string
	SQL  string
}

var steps = []step{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_expenses",
		SQL: `CREATE TABLE IF NOT EXISTS expenses (
  id              UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  date            DATE          NOT NULL,
  amount          NUMERIC(16,2) NOT NULL,
  description     TEXT          NOT NULL DEFAULT '',
  category        TEXT          NOT NULL DEFAULT 'Geral',
  supplier_name   TEXT          NOT NULL DEFAULT '',
  document_number TEXT          NOT NULL UNIQUE,
  year            INTEGER       NOT NULL,
  month           INTEGER       NOT NULL CHECK (month BETWEEN 1 AND 12),
  source_url      TEXT          NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_expenses_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses (date);`,
	},
	{
		Name: "create_index_expenses_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses (category);`,
	},
	{
		Name: "create_index_expenses_year_month",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_expenses_year_month ON expenses (year, month);`,
	},
}

// Steps returns the ordered step names.
func Steps() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// EnsureMigrated runs every step unless the expenses table already exists.
// It returns true when the steps ran.
func EnsureMigrated(ctx context.Context, db *sql.DB) (bool, error) {
	log := logger.Component(ctx, "database")
	start := time.Now()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.expenses') IS NOT NULL").Scan(&exists); err != nil {
		log.Error().Err(err).Str("event", "db_migration_failed").Msg("sentinel check failed")
		return false, fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info().Str("event", "db_migration_skip").Dur("duration", time.Since(start)).Msg("schema already exists, skipping migration")
		return false, nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("migrating")
	for _, s := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, s.SQL); err != nil {
			log.Error().Err(err).Str("event", "db_migration_failed").Str("migration_step", s.Name).Msg("migration step failed")
			return false, fmt.Errorf("migration step %s failed: %w", s.Name, err)
		}
		log.Info().Str("event", "db_migration_step").Str("migration_step", s.Name).Dur("step_duration", time.Since(stepStart)).Msg("step applied")
	}

	log.Info().Str("event", "db_migration_success").Dur("duration", time.Since(start)).Msg("migration finished")
	return true, nil
}
