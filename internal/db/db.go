package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"trading-relay/internal/config"
)

const exchangesSchema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id              UUID PRIMARY KEY,
	connection_id   TEXT NOT NULL,
	conversation_id TEXT,
	model           TEXT NOT NULL,
	input_tokens    INTEGER NOT NULL DEFAULT 0,
	output_tokens   INTEGER NOT NULL DEFAULT 0,
	finish_reason   TEXT,
	status          TEXT NOT NULL,
	error           TEXT,
	latency_ms      BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS exchanges_created_at_idx ON exchanges (created_at);
`

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// El log de intercambios es escritura ocasional; pocas conexiones bastan.
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// conn es la parte de *pgxpool.Pool que usan Ping y EnsureSchema.
type conn interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool conn) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

// EnsureSchema crea la tabla de intercambios si no existe.
func EnsureSchema(ctx context.Context, pool conn) error {
	if _, err := pool.Exec(ctx, exchangesSchema); err != nil {
		return fmt.Errorf("db schema: %w", err)
	}
	return nil
}
