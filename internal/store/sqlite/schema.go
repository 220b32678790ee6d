package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS telemetry_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		lesson_id   INTEGER NOT NULL,
		name        TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		meta        TEXT DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		lesson_id  INTEGER NOT NULL,
		correct    INTEGER NOT NULL,
		score      REAL NOT NULL,
		feedback   TEXT DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON telemetry_events (session_id);
	CREATE INDEX IF NOT EXISTS idx_events_lesson ON telemetry_events (lesson_id);
	CREATE INDEX IF NOT EXISTS idx_events_name ON telemetry_events (name);
	CREATE INDEX IF NOT EXISTS idx_events_session_name ON telemetry_events (session_id, name);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs (session_id);
	CREATE INDEX IF NOT EXISTS idx_runs_lesson ON runs (lesson_id);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
