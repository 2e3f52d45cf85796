package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion is the schema revision this build expects.
const SchemaVersion = 1

//go:embed schema.sql
var schemaSQL string

// migrationLockID keys the advisory lock held while migrating, so two
// processes starting together do not both apply the schema.
const migrationLockID = 0x7468616d6573

// Migrate brings the schema up to SchemaVersion. It returns the version found
// before migrating. Running it against an up-to-date database is a no-op.
func Migrate(ctx context.Context, db *pgxpool.Pool) (from int, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(migrationLockID)); err != nil {
		return 0, fmt.Errorf("acquire migration lock: %w", err)
	}

	_, err = tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	if err != nil {
		return 0, fmt.Errorf("create meta table: %w", err)
	}

	from, err = currentVersion(ctx, tx)
	if err != nil {
		return 0, err
	}
	if from > SchemaVersion {
		err = fmt.Errorf("database schema version %d is newer than supported version %d", from, SchemaVersion)
		return from, err
	}
	if from == SchemaVersion {
		err = tx.Commit(ctx)
		return from, err
	}

	if _, err = tx.Exec(ctx, schemaSQL); err != nil {
		return from, fmt.Errorf("apply schema: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO meta (key, value) VALUES ('schema_version', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		strconv.Itoa(SchemaVersion),
	)
	if err != nil {
		return from, fmt.Errorf("record schema version: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return from, fmt.Errorf("commit migration: %w", err)
	}
	return from, nil
}

func currentVersion(ctx context.Context, tx pgx.Tx) (int, error) {
	var raw string
	err := tx.QueryRow(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", raw, err)
	}
	return v, nil
}
