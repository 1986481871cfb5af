package domain

import (
	"context"
	"time"
)

// SpanKind defines the category of an instrumentation entry.
type SpanKind string

const (
	// KindMethod marks the invocation of a user-defined method on a node.
	KindMethod SpanKind = "method"
	// KindDelegate marks a verb forwarded to the external engine.
	KindDelegate SpanKind = "delegate"
)

// Postfix returns the display suffix used in command logs.
func (k SpanKind) Postfix() string {
	switch k {
	case KindMethod:
		return "()"
	case KindDelegate:
		return " ⤵"
	}
	return ""
}

// SpanDescriptor is what the engine's log primitive receives.
type SpanDescriptor struct {
	ID          uint64   `json:"id"`
	Kind        SpanKind `json:"kind"`
	Path        string   `json:"path"`
	DisplayName string   `json:"display_name"`
	Locator     string   `json:"locator,omitempty"`
	Grouped     bool     `json:"grouped"`

	// ConsoleProps holds extra details shown when the entry is inspected.
	ConsoleProps map[string]any `json:"console_props,omitempty"`
}

// SpanEvent is reported to lifecycle hooks when a span opens or closes.
type SpanEvent struct {
	SpanDescriptor
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for instrumentation observers.
type LifecycleHooks struct {
	OnSpanOpen  func(context.Context, *SpanEvent)
	OnSpanClose func(context.Context, *SpanEvent)
}

// ChainHooks fans every event out to each of the given hooks, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSpanOpen: func(ctx context.Context, e *SpanEvent) {
			for _, h := range hooks {
				if h.OnSpanOpen != nil {
					h.OnSpanOpen(ctx, e)
				}
			}
		},
		OnSpanClose: func(ctx context.Context, e *SpanEvent) {
			for _, h := range hooks {
				if h.OnSpanClose != nil {
					h.OnSpanClose(ctx, e)
				}
			}
		},
	}
}
