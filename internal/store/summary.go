package store

// Summarize folds an ordered event list into the per-session counters the
// inspect report shows. Events must belong to one session; the lesson id is
// taken from the first record.
func Summarize(sessionID string, events []EventRecord) *Summary {
	s := &Summary{SessionID: sessionID, Events: len(events)}
	for i, e := range events {
		if i == 0 {
			s.LessonID = e.LessonID
			s.FirstEvent = e.RecordedAt
		}
		s.LastEvent = e.RecordedAt

		switch e.Name {
		case "decision_made":
			s.Decisions++
		case "consequence_shown":
			s.Consequences++
		case "hint_used":
			s.HintsUsed++
		case "reset_count":
			s.Resets++
		}
	}
	return s
}
