package plan

import (
	"log/slog"

	"codelab/internal/session"
)

// EditorPusher is the external editor collaborator. The engine calls it at
// most once per unique (templateId, resolved text) pair.
type EditorPusher interface {
	PushCode(code string) error
}

// LegacyTemplateID labels the implicit send_to_editor item synthesized from
// the old single-template lesson field.
const LegacyTemplateID = "legacy"

// Dispatcher owns the render list for one lesson plan, the auto-fill side
// channel, and the submission gate.
type Dispatcher struct {
	items  Plan
	pusher EditorPusher
	vars   *session.Store
	events *session.Recorder
	logger *slog.Logger

	interactionRequired bool
	lastSignature       string
}

// NewDispatcher builds a dispatcher for the given plan. When the plan has no
// send_to_editor item and the lesson still carries the legacy single-template
// field, an implicit trailing item is synthesized from it.
func NewDispatcher(items Plan, legacyTemplate string, interactionRequired bool,
	pusher EditorPusher, vars *session.Store, events *session.Recorder, logger *slog.Logger) *Dispatcher {

	if legacyTemplate != "" && !hasSendToEditor(items) {
		items = append(append(Plan{}, items...), SendToEditor{
			Template:   legacyTemplate,
			TemplateID: LegacyTemplateID,
		})
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		items:               items,
		pusher:              pusher,
		vars:                vars,
		events:              events,
		logger:              logger,
		interactionRequired: interactionRequired,
	}
}

// Items returns the full plan, including send_to_editor items.
func (d *Dispatcher) Items() Plan {
	return d.items
}

// RenderList returns the items a frontend should render, in plan order.
// send_to_editor items are side-channel only and unknown types render as
// nothing.
func (d *Dispatcher) RenderList() Plan {
	out := make(Plan, 0, len(d.items))
	for _, item := range d.items {
		switch item.(type) {
		case SendToEditor:
			continue
		case Unknown:
			continue
		}
		out = append(out, item)
	}
	return out
}

// Evaluate runs the auto-fill protocol. Only the first send_to_editor item
// is live. The template is resolved against the store; an empty resolution
// means the referenced variables are not set yet, so the item is skipped and
// retried on the next store change. A non-empty resolution whose signature
// differs from the last applied one is pushed to the editor exactly once,
// recording a decision and a consequence. Repeated evaluation with unchanged
// inputs is a no-op.
func (d *Dispatcher) Evaluate() {
	item, ok := d.firstSendToEditor()
	if !ok {
		return
	}

	resolved := ResolveTemplate(item.Template, d.vars)
	if resolved == "" {
		return
	}

	signature := item.TemplateID + "::" + resolved
	if signature == d.lastSignature {
		return
	}

	if err := d.pusher.PushCode(resolved); err != nil {
		// Leave the signature unapplied so the next evaluation retries.
		d.logger.Warn("editor push", "templateId", item.TemplateID, "error", err)
		return
	}

	d.lastSignature = signature
	d.events.RecordDecision("send_to_editor_auto", map[string]any{
		"templateId": item.TemplateID,
	})
	d.events.RecordConsequence("editor filled", map[string]any{
		"templateId": item.TemplateID,
	})
}

// SubmissionAllowed is the gate: pure function of the two telemetry
// counters, recomputed on every call.
func (d *Dispatcher) SubmissionAllowed() bool {
	if !d.interactionRequired {
		return true
	}
	return d.events.DecisionCount() >= 1 && d.events.ConsequenceCount() >= 1
}

func (d *Dispatcher) firstSendToEditor() (SendToEditor, bool) {
	for _, item := range d.items {
		if ste, ok := item.(SendToEditor); ok {
			return ste, true
		}
	}
	return SendToEditor{}, false
}

func hasSendToEditor(items Plan) bool {
	for _, item := range items {
		if _, ok := item.(SendToEditor); ok {
			return true
		}
	}
	return false
}
