// Package store is the telemetry archive: an append-only export of session
// events and verification runs, queryable by the inspect commands. The
// archive is an observability sink; the engine never reads it to make
// decisions, and runs fine without one.
package store

import (
	"context"
	"time"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	AppendEvent(ctx context.Context, e EventRecord) error
	SaveRun(ctx context.Context, r RunRecord) error

	ListEvents(ctx context.Context, sessionID string) ([]EventRecord, error)
	ListRuns(ctx context.Context, lessonID int) ([]RunRecord, error)
	SessionSummary(ctx context.Context, sessionID string) (*Summary, error)
}

type EventRecord struct {
	SessionID  string
	LessonID   int
	Name       string
	RecordedAt time.Time
	Meta       map[string]any
}

type RunRecord struct {
	SessionID string
	LessonID  int
	Correct   bool
	Score     float64
	Feedback  string
	CreatedAt time.Time
}

type Summary struct {
	SessionID    string
	LessonID     int
	Events       int
	Decisions    int
	Consequences int
	HintsUsed    int
	Resets       int
	FirstEvent   time.Time
	LastEvent    time.Time
}
