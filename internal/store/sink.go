package store

import (
	"context"
	"time"

	"codelab/internal/session"
)

// ArchiveSink adapts a Store into a session.Sink, stamping every event with
// the owning session and lesson. Appends run with a short deadline so a slow
// archive cannot stall the session; the recorder already treats sink errors
// as best effort.
type ArchiveSink struct {
	store     Store
	sessionID string
	lessonID  int
	timeout   time.Duration
}

func NewArchiveSink(s Store, sessionID string, lessonID int) *ArchiveSink {
	return &ArchiveSink{store: s, sessionID: sessionID, lessonID: lessonID, timeout: 2 * time.Second}
}

var _ session.Sink = (*ArchiveSink)(nil)

func (a *ArchiveSink) Append(e session.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return a.store.AppendEvent(ctx, EventRecord{
		SessionID:  a.sessionID,
		LessonID:   a.lessonID,
		Name:       string(e.Name),
		RecordedAt: e.Timestamp,
		Meta:       e.Meta,
	})
}
