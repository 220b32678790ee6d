package postgres

import (
	"context"
	"fmt"

	"codelab/internal/store"
)

func (c *Client) AppendEvent(ctx context.Context, e store.EventRecord) error {
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO telemetry_events (session_id, lesson_id, name, recorded_at, meta)
		VALUES ($1, $2, $3, $4, $5)`,
		e.SessionID, e.LessonID, e.Name, e.RecordedAt, meta)
	if err != nil {
		return fmt.Errorf("inserting telemetry event: %w", err)
	}
	return nil
}

func (c *Client) SaveRun(ctx context.Context, r store.RunRecord) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO runs (session_id, lesson_id, correct, score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.SessionID, r.LessonID, r.Correct, r.Score, r.Feedback, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (c *Client) ListEvents(ctx context.Context, sessionID string) ([]store.EventRecord, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT session_id, lesson_id, name, recorded_at, meta
		FROM telemetry_events
		WHERE session_id = $1
		ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying telemetry events: %w", err)
	}
	defer rows.Close()

	var out []store.EventRecord
	for rows.Next() {
		var e store.EventRecord
		if err := rows.Scan(&e.SessionID, &e.LessonID, &e.Name, &e.RecordedAt, &e.Meta); err != nil {
			return nil, fmt.Errorf("scanning telemetry event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *Client) ListRuns(ctx context.Context, lessonID int) ([]store.RunRecord, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT session_id, lesson_id, correct, score, feedback, created_at
		FROM runs
		WHERE lesson_id = $1
		ORDER BY id`,
		lessonID)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []store.RunRecord
	for rows.Next() {
		var r store.RunRecord
		if err := rows.Scan(&r.SessionID, &r.LessonID, &r.Correct, &r.Score, &r.Feedback, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *Client) SessionSummary(ctx context.Context, sessionID string) (*store.Summary, error) {
	events, err := c.ListEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return store.Summarize(sessionID, events), nil
}
