// Package session holds the per-lesson mutable state every widget shares:
// the variable store, the telemetry recorder, and the session wrapper that
// ties them to one lesson view. State never outlives the session; a new
// lesson id always means a fresh session.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one learner's view of one lesson. The mutex serializes the
// tool-server goroutines and the stepper play loop; the underlying store and
// recorder are not safe for concurrent use on their own.
type Session struct {
	ID        string
	LessonID  string
	StartedAt time.Time

	Vars   *Store
	Events *Recorder

	mu sync.Mutex
}

func New(lessonID string, logger *slog.Logger, sinks ...Sink) *Session {
	return &Session{
		ID:        uuid.NewString(),
		LessonID:  lessonID,
		StartedAt: time.Now(),
		Vars:      NewStore(),
		Events:    NewRecorder(logger, sinks...),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// ResetState clears variables and telemetry together. Widget-local state
// (revealed hints, puzzle progress) is owned by the widget machines and is
// not affected.
func (s *Session) ResetState() {
	s.Vars.ResetVariables()
	s.Events.ResetInteractions()
}
