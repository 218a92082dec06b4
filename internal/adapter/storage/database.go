package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect initializes the Postgres connection pool. Every operation acquires
// its session from this pool and releases it when the operation returns.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the ledger tables if they do not exist yet. Uniqueness
// of the natural keys and of the ownership pair is enforced here; the tx_id
// unique indexes are the source of truth for write idempotency.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		customer_id TEXT NOT NULL UNIQUE,
		name TEXT
	);
	CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		account_no TEXT NOT NULL UNIQUE,
		type TEXT,
		currency TEXT DEFAULT 'USD',
		status TEXT DEFAULT 'active'
	);
	CREATE TABLE IF NOT EXISTS merchants (
		id BIGSERIAL PRIMARY KEY,
		merchant_id TEXT NOT NULL UNIQUE,
		name TEXT,
		mcc TEXT
	);
	CREATE TABLE IF NOT EXISTS owns (
		id BIGSERIAL PRIMARY KEY,
		customer_id_fk BIGINT NOT NULL REFERENCES customers(id),
		account_id_fk BIGINT NOT NULL REFERENCES accounts(id),
		since TIMESTAMPTZ,
		UNIQUE (customer_id_fk, account_id_fk)
	);
	CREATE TABLE IF NOT EXISTS transfers (
		id BIGSERIAL PRIMARY KEY,
		tx_id TEXT NOT NULL UNIQUE,
		amount NUMERIC(18,4) NOT NULL CHECK (amount >= 0),
		currency TEXT DEFAULT 'USD',
		channel TEXT DEFAULT 'api',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		from_account_id BIGINT NOT NULL REFERENCES accounts(id),
		to_account_id BIGINT NOT NULL REFERENCES accounts(id)
	);
	CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers (from_account_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers (to_account_id);
	CREATE TABLE IF NOT EXISTS pays (
		id BIGSERIAL PRIMARY KEY,
		tx_id TEXT NOT NULL UNIQUE,
		amount NUMERIC(18,4) NOT NULL CHECK (amount >= 0),
		currency TEXT DEFAULT 'USD',
		channel TEXT DEFAULT 'api',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		from_account_id BIGINT NOT NULL REFERENCES accounts(id),
		merchant_id_fk BIGINT NOT NULL REFERENCES merchants(id)
	);
	CREATE INDEX IF NOT EXISTS idx_pays_from ON pays (from_account_id, created_at DESC);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
