package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schemaLockKey serialises concurrent EnsureSchema calls across replicas.
const schemaLockKey = 0x0d7553

// migrations are applied in order and never edited once released.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	actor_id TEXT NOT NULL DEFAULT '',
	company_id TEXT,
	action TEXT NOT NULL,
	entity TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	meta JSONB,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_entity_idx ON audit_logs (entity, entity_id)`,
	`CREATE TABLE IF NOT EXISTS approvals (
	id BIGSERIAL PRIMARY KEY,
	module TEXT NOT NULL,
	ref_id UUID NOT NULL,
	actor_id TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS approvals_ref_idx ON approvals (module, ref_id)`,
}

// EnsureSchema applies pending migrations and records the resulting version.
func EnsureSchema(ctx context.Context, db TxStarter) error {
	return InTx(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
			return fmt.Errorf("platform/db: schema lock: %w", err)
		}
		if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INT NOT NULL)`); err != nil {
			return fmt.Errorf("platform/db: schema version table: %w", err)
		}
		var applied int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&applied); err != nil {
			return fmt.Errorf("platform/db: read schema version: %w", err)
		}
		pending := pendingMigrations(applied)
		for i, stmt := range pending {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: migration %d: %w", applied+i+1, err)
			}
		}
		if len(pending) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, len(migrations))
		return err
	})
}

func pendingMigrations(applied int) []string {
	if applied >= len(migrations) {
		return nil
	}
	if applied < 0 {
		applied = 0
	}
	return migrations[applied:]
}
