package plan

import (
	"testing"
)

func TestDecodeTaggedItems(t *testing.T) {
	data := []byte(`[
		{"type": "prediction", "question": "What prints?", "options": ["1", "2"], "correctIndex": 1, "explanation": "because"},
		{"type": "variable_slider", "name": "n", "min": 0, "max": 10, "initial": 5},
		{"type": "parsons_puzzle", "correctOrder": ["a", "b"], "scrambledOrder": ["b", "a"]},
		{"type": "send_to_editor", "template": "x = {{n}}", "templateId": "t1"}
	]`)

	items, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items; want 4", len(items))
	}

	pred, ok := items[0].(Prediction)
	if !ok {
		t.Fatalf("item 0 is %T; want Prediction", items[0])
	}
	if pred.CorrectIndex != 1 || len(pred.Options) != 2 {
		t.Fatalf("unexpected prediction: %+v", pred)
	}

	slider, ok := items[1].(VariableSlider)
	if !ok {
		t.Fatalf("item 1 is %T; want VariableSlider", items[1])
	}
	if slider.Name != "n" || slider.Initial != 5 {
		t.Fatalf("unexpected slider: %+v", slider)
	}

	if _, ok := items[2].(ParsonsPuzzle); !ok {
		t.Fatalf("item 2 is %T; want ParsonsPuzzle", items[2])
	}

	ste, ok := items[3].(SendToEditor)
	if !ok {
		t.Fatalf("item 3 is %T; want SendToEditor", items[3])
	}
	if ste.TemplateID != "t1" {
		t.Fatalf("unexpected templateId: %q", ste.TemplateID)
	}
}

func TestDecodeUnknownTypeIsKept(t *testing.T) {
	items, err := Decode([]byte(`[{"type": "hologram", "spin": 3}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := items[0].(Unknown)
	if !ok {
		t.Fatalf("item is %T; want Unknown", items[0])
	}
	if u.Type != "hologram" || u.Fields["spin"] != float64(3) {
		t.Fatalf("unexpected unknown item: %+v", u)
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	items, err := Decode([]byte(`[{"type": "hint_ladder", "hints": ["a"], "futureField": true}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := items[0].(HintLadder); !ok {
		t.Fatalf("item is %T; want HintLadder", items[0])
	}
}

func TestDecodeMissingType(t *testing.T) {
	if _, err := Decode([]byte(`[{"question": "?"}]`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestFromAny(t *testing.T) {
	items, err := FromAny([]any{
		map[string]any{"type": "reset_state", "label": "Start over"},
		map[string]any{"type": "fill_blanks", "template": "print({{a}})", "blanks": []any{
			map[string]any{"id": "a", "options": []any{"1", "2"}, "correct": "2"},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items; want 2", len(items))
	}
	fb, ok := items[1].(FillBlanks)
	if !ok {
		t.Fatalf("item 1 is %T; want FillBlanks", items[1])
	}
	if len(fb.Blanks) != 1 || fb.Blanks[0].Correct != "2" {
		t.Fatalf("unexpected blanks: %+v", fb.Blanks)
	}
}
