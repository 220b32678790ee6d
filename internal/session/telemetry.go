package session

import (
	"log/slog"
	"time"
)

type EventName string

const (
	EventDecisionMade      EventName = "decision_made"
	EventConsequenceShown  EventName = "consequence_shown"
	EventPredictionCorrect EventName = "prediction_correct"
	EventHintUsed          EventName = "hint_used"
	EventResetCount        EventName = "reset_count"
	EventTimeToComplete    EventName = "time_to_complete"
)

// Event is one appended telemetry record.
type Event struct {
	Name      EventName
	Timestamp time.Time
	Meta      map[string]any
}

// Sink receives a copy of every recorded event. Sinks are best effort: a
// sink error is logged and dropped, it never reaches the recording caller.
type Sink interface {
	Append(e Event) error
}

// Recorder is the append-only telemetry log plus its two derived counters.
// Recording cannot fail.
type Recorder struct {
	now    func() time.Time
	logger *slog.Logger
	sinks  []Sink

	events           []Event
	decisionCount    int
	consequenceCount int
}

func NewRecorder(logger *slog.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{now: time.Now, logger: logger, sinks: sinks}
}

// AddSink attaches a sink after construction, for sinks that need the
// session id the recorder belongs to.
func (r *Recorder) AddSink(s Sink) {
	r.sinks = append(r.sinks, s)
}

// RecordEvent appends the event and bumps the matching derived counter.
func (r *Recorder) RecordEvent(name EventName, meta map[string]any) {
	e := Event{Name: name, Timestamp: r.now(), Meta: meta}
	r.events = append(r.events, e)

	switch name {
	case EventDecisionMade:
		r.decisionCount++
	case EventConsequenceShown:
		r.consequenceCount++
	}

	r.mirror(e)
}

// RecordDecision records a decision_made event with the decision type folded
// into the meta record.
func (r *Recorder) RecordDecision(decisionType string, meta map[string]any) {
	r.RecordEvent(EventDecisionMade, withType(decisionType, meta))
}

// RecordConsequence records a consequence_shown event with the consequence
// type folded into the meta record.
func (r *Recorder) RecordConsequence(consequenceType string, meta map[string]any) {
	r.RecordEvent(EventConsequenceShown, withType(consequenceType, meta))
}

// ResetInteractions clears the log and both counters. Variables are not
// touched; callers combine this with Store.ResetVariables when fully
// restarting a lesson.
func (r *Recorder) ResetInteractions() {
	r.events = nil
	r.decisionCount = 0
	r.consequenceCount = 0
}

func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) DecisionCount() int    { return r.decisionCount }
func (r *Recorder) ConsequenceCount() int { return r.consequenceCount }

func (r *Recorder) mirror(e Event) {
	r.logger.Info("telemetry event",
		"name", string(e.Name),
		"meta", e.Meta,
	)
	for _, sink := range r.sinks {
		if err := sink.Append(e); err != nil {
			r.logger.Warn("telemetry sink append", "error", err)
		}
	}
}

func withType(typ string, meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["type"] = typ
	return out
}
