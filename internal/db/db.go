package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS personas (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	traits JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	persona_id      TEXT NOT NULL REFERENCES personas(id),
	affinity        INT NOT NULL,
	round           INT NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	scene_id        TEXT NOT NULL DEFAULT '',
	memory          JSONB,
	token_estimate  INT NOT NULL DEFAULT 0,
	affinity_points JSONB NOT NULL DEFAULT '[]',
	end_reason      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	content         TEXT NOT NULL,
	sender          TEXT NOT NULL,
	affinity_delta  INT,
	quoted_content  TEXT,
	selected_option INT,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_conversation_idx ON messages (conversation_id, created_at);
`

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
