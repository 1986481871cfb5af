package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ContentRenderer transforms Markdown before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// Quiet suppresses per-step lines; only the summary is written.
	Quiet bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the summary renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerInput configures where answers to prompts are read from.
func WithTextHandlerInput(r io.Reader) TextHandlerOption {
	return func(h *TextHandler) {
		h.Reader = bufio.NewReader(r)
	}
}

// WithTextHandlerQuiet suppresses per-step output.
func WithTextHandlerQuiet(quiet bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Quiet = quiet
	}
}

// NewTextHandler creates a handler writing to w (Stdout when nil).
// Prompts read from Stdin unless WithTextHandlerInput is given.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	if h.Reader == nil {
		h.Reader = bufio.NewReader(os.Stdin)
	}
	return h
}

func (h *TextHandler) StepStarted(ctx context.Context, index int, step Step) error {
	if h.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(h.Writer, "%3d  %s %s\n", index, step.Label(), formatArgs(step.Args))
	return err
}

func (h *TextHandler) StepFinished(ctx context.Context, res StepResult) error {
	if h.Quiet {
		return nil
	}
	var err error
	switch res.Status {
	case StatusPassed:
		_, err = fmt.Fprintf(h.Writer, "     ok    %s\n", res.Result)
	case StatusFailed:
		_, err = fmt.Fprintf(h.Writer, "     FAIL  %s\n", res.Error)
	case StatusSkipped:
		_, err = fmt.Fprintf(h.Writer, "%3d  %s skipped\n", res.Index, res.Step.Label())
	}
	return err
}

func (h *TextHandler) Summary(ctx context.Context, report *Report) error {
	output := report.Markdown()
	if h.Renderer != nil {
		if rendered, err := h.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}

// SystemOutput writes a meta-message, such as a confirmation prompt.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[arbor] %s\n", msg)
	return err
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Input reads one answer. It returns early when ctx ends.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
