package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"codelab/internal/store"
)

func (c *Client) AppendEvent(ctx context.Context, e store.EventRecord) error {
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO telemetry_events (session_id, lesson_id, name, recorded_at, meta)
		VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.LessonID, e.Name, e.RecordedAt.UTC().Format(time.RFC3339Nano), meta)
	if err != nil {
		return fmt.Errorf("inserting telemetry event: %w", err)
	}
	return nil
}

func (c *Client) SaveRun(ctx context.Context, r store.RunRecord) error {
	correct := 0
	if r.Correct {
		correct = 1
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (session_id, lesson_id, correct, score, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.LessonID, correct, r.Score, r.Feedback, r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (c *Client) ListEvents(ctx context.Context, sessionID string) ([]store.EventRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT session_id, lesson_id, name, recorded_at, meta
		FROM telemetry_events
		WHERE session_id = ?
		ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying telemetry events: %w", err)
	}
	defer rows.Close()

	var out []store.EventRecord
	for rows.Next() {
		var (
			e        store.EventRecord
			recorded string
			meta     sql.NullString
		)
		if err := rows.Scan(&e.SessionID, &e.LessonID, &e.Name, &recorded, &meta); err != nil {
			return nil, fmt.Errorf("scanning telemetry event: %w", err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		if e.Meta, err = decodeMeta(meta.String); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *Client) ListRuns(ctx context.Context, lessonID int) ([]store.RunRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT session_id, lesson_id, correct, score, feedback, created_at
		FROM runs
		WHERE lesson_id = ?
		ORDER BY id`,
		lessonID)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []store.RunRecord
	for rows.Next() {
		var (
			r       store.RunRecord
			correct int
			created string
		)
		if err := rows.Scan(&r.SessionID, &r.LessonID, &correct, &r.Score, &r.Feedback, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Correct = correct != 0
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
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

func encodeMeta(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding event meta: %w", err)
	}
	return string(raw), nil
}

func decodeMeta(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("decoding event meta: %w", err)
	}
	return meta, nil
}
