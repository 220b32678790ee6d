// Package starlark is the built-in reference runner: it executes lesson
// code in-process with the Starlark interpreter, so the CLI can run and
// verify lessons without any external runtime.
package starlark

import (
	"context"
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"codelab/internal/runtime"
	"codelab/internal/verify"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

type Runner struct{}

func New() *Runner { return &Runner{} }

func (*Runner) Language() string { return "starlark" }

// errorLabels maps Starlark failure text onto the error names lesson
// feedback is written against. Matched in order, first hit wins; an
// unmatched error passes through unlabelled.
var errorLabels = []struct {
	needle string
	label  string
}{
	{"indent", "IndentationError"},
	{"syntax error", "SyntaxError"},
	{", want ", "SyntaxError"},
	{"undefined:", "NameError"},
	{"unknown binary op", "TypeError"},
	{"unsupported binary op", "TypeError"},
	{"invalid call of non-function", "TypeError"},
	{"division by zero", "ZeroDivisionError"},
	{"out of range", "IndexError"},
	{"not in dict", "KeyError"},
	{"has no .", "AttributeError"},
}

func labelError(err error) error {
	msg := err.Error()
	for _, m := range errorLabels {
		if strings.Contains(msg, m.needle) {
			return fmt.Errorf("%s: %w", m.label, err)
		}
	}
	return err
}

// Run executes the code and captures print output as stdout. Interpreter
// errors carry a leading error name so downstream feedback can classify
// them; a silent successful run yields the canonical no-output marker.
func (*Runner) Run(ctx context.Context, code string) (runtime.Result, error) {
	var out strings.Builder

	thread := &starlark.Thread{
		Name: "lesson",
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
			out.WriteString("\n")
		},
	}

	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(ctx.Err().Error())
	})
	defer stop()

	_, err := starlark.ExecFileOptions(fileOptions, thread, "lesson.star", code, nil)
	if err != nil {
		return runtime.Result{}, labelError(err)
	}

	if out.Len() == 0 {
		return runtime.Result{Stdout: verify.SuccessMarker}, nil
	}
	return runtime.Result{Stdout: strings.TrimRight(out.String(), "\n")}, nil
}
