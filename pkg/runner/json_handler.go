package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type   string      `json:"type"`
	Index  int         `json:"index,omitempty"`
	Step   *Step       `json:"step,omitempty"`
	Result *StepResult `json:"result,omitempty"`
	Report *Report     `json:"report,omitempty"`
}

// Event types.
const (
	EventStepStarted  = "step_started"
	EventStepFinished = "step_finished"
	EventSummary      = "summary"
)

// JSONHandler implements the Handler interface for structured JSON-Lines output.
type JSONHandler struct {
	mu      sync.Mutex
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON output.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(ev)
}

func (h *JSONHandler) StepStarted(ctx context.Context, index int, step Step) error {
	return h.emit(Event{Type: EventStepStarted, Index: index, Step: &step})
}

func (h *JSONHandler) StepFinished(ctx context.Context, res StepResult) error {
	return h.emit(Event{Type: EventStepFinished, Index: res.Index, Result: &res})
}

func (h *JSONHandler) Summary(ctx context.Context, report *Report) error {
	return h.emit(Event{Type: EventSummary, Report: report})
}
