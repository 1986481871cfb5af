package runner

import (
	"context"
)

// Handler defines how a run reports progress.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type Handler interface {
	// StepStarted is called before a step runs. index is 1-based.
	StepStarted(ctx context.Context, index int, step Step) error

	// StepFinished is called once per step with its outcome.
	StepFinished(ctx context.Context, res StepResult) error

	// Summary is called once at the end of the run.
	Summary(ctx context.Context, report *Report) error
}

// Prompter can ask the user a question. TextHandler implements it.
type Prompter interface {
	// SystemOutput presents a meta-message to the user.
	SystemOutput(ctx context.Context, msg string) error

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)
}

// nopHandler discards every event.
type nopHandler struct{}

func (nopHandler) StepStarted(context.Context, int, Step) error { return nil }
func (nopHandler) StepFinished(context.Context, StepResult) error { return nil }
func (nopHandler) Summary(context.Context, *Report) error        { return nil }
