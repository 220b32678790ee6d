package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"codelab/internal/runtime"
	"codelab/internal/session"
	"codelab/internal/store"
	"codelab/internal/verify"
)

type SubmitCodeInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from open_lesson"`
	Code      string `json:"code,omitempty" jsonschema:"code to run, defaults to the editor contents"`
}

type SubmitCodeOutput struct {
	Allowed     bool     `json:"allowed"`
	Message     string   `json:"message,omitempty"`
	Stdout      string   `json:"stdout,omitempty"`
	Correct     bool     `json:"correct"`
	Score       float64  `json:"score"`
	Feedback    string   `json:"feedback,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	ErrorType   string   `json:"error_type,omitempty"`
}

type EventOutput struct {
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Meta      map[string]any `json:"meta,omitempty"`
}

type ReportOutput struct {
	SessionID         string        `json:"session_id"`
	LessonID          string        `json:"lesson_id"`
	Events            []EventOutput `json:"events"`
	Decisions         int           `json:"decisions"`
	Consequences      int           `json:"consequences"`
	SubmissionAllowed bool          `json:"submission_allowed"`
}

func (s *Server) handleSubmitCode(ctx context.Context, req *sdk.CallToolRequest, input SubmitCodeInput) (*sdk.CallToolResult, SubmitCodeOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, SubmitCodeOutput{}, err
	}

	ls.sess.Lock()
	if !ls.dispatcher.SubmissionAllowed() {
		ls.sess.Unlock()
		return nil, SubmitCodeOutput{
			Allowed: false,
			Message: "Interact with the lesson before submitting.",
		}, nil
	}
	code := input.Code
	if code == "" {
		code = ls.editor.code
	}
	expected := ls.lesson.ExpectedOutput
	ls.sess.Unlock()

	runner, err := s.runtimes.ForLesson(ls.lesson.ID)
	if err != nil {
		return nil, SubmitCodeOutput{}, err
	}

	// The session lock is not held while the code runs.
	run, runErr := runtime.RunWithTimeout(ctx, runner, code, s.timeout)
	actual := run.Stdout
	if runErr != nil {
		// Interpreter failures are output text as far as verification cares.
		actual = runErr.Error()
	}

	result := verify.Verify(expected, actual, code)

	ls.sess.Lock()
	if result.Correct {
		ls.sess.Events.RecordEvent(session.EventTimeToComplete, map[string]any{
			"seconds": time.Since(ls.sess.StartedAt).Seconds(),
		})
	}
	ls.sess.Unlock()

	if s.archive != nil {
		rec := store.RunRecord{
			SessionID: ls.sess.ID,
			LessonID:  ls.lesson.ID,
			Correct:   result.Correct,
			Score:     result.Score,
			Feedback:  result.Feedback,
			CreatedAt: time.Now(),
		}
		if err := s.archive.SaveRun(ctx, rec); err != nil {
			s.logger.Warn("saving run record", "error", err)
		}
	}

	return nil, SubmitCodeOutput{
		Allowed:     true,
		Stdout:      actual,
		Correct:     result.Correct,
		Score:       result.Score,
		Feedback:    result.Feedback,
		Suggestions: result.Suggestions,
		ErrorType:   result.ErrorType,
	}, nil
}

func (s *Server) handleGetReport(ctx context.Context, req *sdk.CallToolRequest, input SessionInput) (*sdk.CallToolResult, ReportOutput, error) {
	ls, err := s.session(input.SessionID)
	if err != nil {
		return nil, ReportOutput{}, err
	}

	ls.sess.Lock()
	defer ls.sess.Unlock()

	events := ls.sess.Events.Events()
	out := ReportOutput{
		SessionID:         ls.sess.ID,
		LessonID:          ls.sess.LessonID,
		Events:            make([]EventOutput, 0, len(events)),
		Decisions:         ls.sess.Events.DecisionCount(),
		Consequences:      ls.sess.Events.ConsequenceCount(),
		SubmissionAllowed: ls.dispatcher.SubmissionAllowed(),
	}
	for _, e := range events {
		out.Events = append(out.Events, EventOutput{
			Name:      string(e.Name),
			Timestamp: e.Timestamp,
			Meta:      e.Meta,
		})
	}
	return nil, out, nil
}
