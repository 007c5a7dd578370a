package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema if it does not exist yet. The partial unique
// index on appointments is the storage-level backstop for the no-double-booking
// invariant: cancelled rows do not count, so a cancelled slot is reusable.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS persons (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			role       TEXT NOT NULL,
			specialty  TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id          BIGSERIAL PRIMARY KEY,
			patient_id  TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			visit_date  TEXT NOT NULL,
			visit_time  TEXT NOT NULL,
			visit_type  TEXT NOT NULL,
			specialty   TEXT NOT NULL,
			status      TEXT NOT NULL,
			notes       TEXT NOT NULL DEFAULT '',
			summary     TEXT NOT NULL DEFAULT '',
			outcome     TEXT NOT NULL DEFAULT '',
			reminded    BOOLEAN NOT NULL DEFAULT false,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot_uq
			ON appointments (provider_id, visit_date, visit_time)
			WHERE status <> 'cancelled'`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id           BIGSERIAL PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			text         TEXT NOT NULL,
			read         BOOLEAN NOT NULL DEFAULT false,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS notifications_recipient_idx
			ON notifications (recipient_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
