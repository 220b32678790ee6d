package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codelab/internal/store"
)

var _ store.Store = (*Client)(nil)

type Client struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS telemetry_events (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    session_id  TEXT NOT NULL,
    lesson_id   INTEGER NOT NULL,
    name        TEXT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    meta        JSONB DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS runs (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    session_id TEXT NOT NULL,
    lesson_id  INTEGER NOT NULL,
    correct    BOOLEAN NOT NULL,
    score      DOUBLE PRECISION NOT NULL,
    feedback   TEXT DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_session ON telemetry_events (session_id);
CREATE INDEX IF NOT EXISTS idx_events_lesson ON telemetry_events (lesson_id);
CREATE INDEX IF NOT EXISTS idx_events_name ON telemetry_events (name);
CREATE INDEX IF NOT EXISTS idx_events_session_name ON telemetry_events (session_id, name);
CREATE INDEX IF NOT EXISTS idx_runs_session ON runs (session_id);
CREATE INDEX IF NOT EXISTS idx_runs_lesson ON runs (lesson_id);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
