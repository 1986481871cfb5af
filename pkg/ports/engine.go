package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Handle is a scoped query result returned by the engine.
type Handle interface {
	// Find narrows the handle by a relative textual locator.
	Find(ctx context.Context, locator string) (Handle, error)

	// Do executes a named verb (action or assertion) against the matched
	// target(s). The returned handle may be the receiver itself.
	Do(ctx context.Context, verb string, args ...any) (Handle, error)
}

// Engine is the external query engine.
// The embedded Handle is the ambient top-level context: Do on the engine
// runs a verb without any scope narrowing.
type Engine interface {
	Handle

	// Get resolves a textual locator against the whole top-level context.
	Get(ctx context.Context, locator string) (Handle, error)

	// Verbs lists the verb names this engine understands.
	Verbs() []string

	// LogOpen opens an entry in the engine's own command log.
	// It must be safe to call from within a Queue command.
	LogOpen(ctx context.Context, desc domain.SpanDescriptor) Span
}

// Span is an open entry in the engine's command log.
type Span interface {
	Close(result Handle, err error)
}
