package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// createLogger configures the application logger.
// Debug forces debug level; otherwise level comes from the config.
// It always writes to Stderr to keep Stdout for reports.
func createLogger(debug bool, level string) *slog.Logger {
	switch {
	case debug:
		return logging.New(slog.LevelDebug)
	case level == "":
		return logging.NewNop()
	}
	return logging.New(logging.ParseLevel(level))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSpanOpen: func(ctx context.Context, e *domain.SpanEvent) {
			logger.Debug("Span Open", "span", e.DisplayName, "locator", e.Locator, "grouped", e.Grouped)
		},
		OnSpanClose: func(ctx context.Context, e *domain.SpanEvent) {
			if e.IsError {
				logger.Debug("Span Close (Error)", "span", e.DisplayName, "err", e.Error)
			} else {
				logger.Debug("Span Close (Success)", "span", e.DisplayName, "result", e.Result)
			}
		},
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		// Interruptions exit 0.
		return nil
	}
	return err
}

// splitList turns "a, b,,c" into [a b c].
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
