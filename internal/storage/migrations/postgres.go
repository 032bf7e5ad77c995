package migrations

import (
	"context"
	"fmt"

	"dynamic-price-optimizer/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded Postgres migration files in
// lexical order. The files only use IF NOT EXISTS forms, so reapplying on
// every startup is safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := readMigrationFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := pool.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.name, err)
		}
	}
	return nil
}
