// Package mcp exposes the lesson engine as an MCP tool server. Each tool
// call addresses a session by id; widget state machines are built when the
// lesson is opened and live until the session is dropped.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"codelab/internal/lesson"
	"codelab/internal/plan"
	"codelab/internal/runtime"
	"codelab/internal/session"
	"codelab/internal/store"
	"codelab/internal/widget"
)

type Server struct {
	catalog  *lesson.Catalog
	runtimes *runtime.Registry
	archive  store.Store // optional
	logger   *slog.Logger
	widgets  widget.Config
	timeout  time.Duration
	mcp      *sdk.Server

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// liveSession binds one open lesson to its state machines. All access goes
// through the session lock; the server map lock only guards lookup.
type liveSession struct {
	sess       *session.Session
	lesson     *lesson.Lesson
	dispatcher *plan.Dispatcher
	editor     *editorBuffer

	render  plan.Plan
	widgets []widget.Widget
}

// editorBuffer is the in-process stand-in for the learner's code editor.
// Auto-filled code lands here and submit_code reads it back as the default
// submission.
type editorBuffer struct {
	code string
}

func (e *editorBuffer) PushCode(code string) error {
	e.code = code
	return nil
}

func NewServer(catalog *lesson.Catalog, runtimes *runtime.Registry, archive store.Store,
	widgets widget.Config, timeout time.Duration, logger *slog.Logger, version string) *Server {

	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = runtime.DefaultTimeout
	}
	s := &Server{
		catalog:  catalog,
		runtimes: runtimes,
		archive:  archive,
		logger:   logger,
		widgets:  widgets,
		timeout:  timeout,
		sessions: make(map[string]*liveSession),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "codelab",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

func (s *Server) openSession(l *lesson.Lesson) *liveSession {
	sess := session.New(strconv.Itoa(l.ID), s.logger)
	if s.archive != nil {
		sess.Events.AddSink(store.NewArchiveSink(s.archive, sess.ID, l.ID))
	}

	editor := &editorBuffer{code: l.StarterCode}
	dispatcher := plan.NewDispatcher(l.Plan, l.SendToEditorTemplate, l.InteractionRequired,
		editor, sess.Vars, sess.Events, s.logger)

	ls := &liveSession{
		sess:       sess,
		lesson:     l,
		dispatcher: dispatcher,
		editor:     editor,
		render:     dispatcher.RenderList(),
	}
	ls.widgets = make([]widget.Widget, len(ls.render))
	for i, item := range ls.render {
		ls.widgets[i] = widget.ForItem(item, sess, s.widgets)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = ls
	s.mu.Unlock()
	return ls
}

func (s *Server) session(id string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return ls, nil
}

func (s *Server) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (ls *liveSession) widgetAt(index int) (widget.Widget, error) {
	if index < 0 || index >= len(ls.widgets) {
		return nil, fmt.Errorf("item index %d out of range, plan has %d items", index, len(ls.widgets))
	}
	w := ls.widgets[index]
	if w == nil {
		return nil, fmt.Errorf("item %d has no interactive state", index)
	}
	return w, nil
}
