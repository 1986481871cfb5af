package instrument

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Entry describes what is being logged.
type Entry struct {
	Kind    domain.SpanKind
	Path    string
	Locator string
	// Grouped spans bracket the call visually; ungrouped ones are single lines.
	Grouped bool
	Props   map[string]any
}

// Logger emits spans through the engine's log primitive, slog and hooks.
type Logger struct {
	engine ports.Engine
	queue  ports.Queue
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time

	seq  atomic.Uint64
	open atomic.Int64
}

// Option configures the Logger.
type Option func(*Logger)

// WithLogger sets the structured logger receiving span records.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithLifecycleHooks registers observers for span events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Logger) {
		l.hooks = hooks
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates a Logger. engine may be nil, in which case only slog and
// hooks receive the spans.
func New(engine ports.Engine, q ports.Queue, opts ...Option) *Logger {
	l := &Logger{
		engine: engine,
		queue:  q,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open reports how many spans were emitted but not closed yet.
func (l *Logger) Open() int {
	return int(l.open.Load())
}

// Emit schedules the opening of a span and returns its handle immediately.
// The caller owns the handle and must Close it exactly once, after the
// operation it describes produced a result (or failed).
func (l *Logger) Emit(ctx context.Context, e Entry) *Span {
	desc := domain.SpanDescriptor{
		ID:           l.seq.Add(1),
		Kind:         e.Kind,
		Path:         e.Path,
		DisplayName:  e.Path + e.Kind.Postfix(),
		Locator:      e.Locator,
		Grouped:      e.Grouped,
		ConsoleProps: e.Props,
	}
	s := &Span{logger: l, desc: desc}
	l.open.Add(1)

	// Logging must not be skipped because the caller's context ended.
	qctx := context.WithoutCancel(ctx)
	l.queue.Enqueue(qctx, ports.Command{
		Name: "log:" + desc.DisplayName,
		Run: func(ctx context.Context) error {
			s.started = l.now()
			if l.engine != nil {
				s.engineSpan = l.engine.LogOpen(ctx, desc)
			}
			l.logger.Debug("span open",
				"id", desc.ID,
				"kind", desc.Kind,
				"path", desc.Path,
				"locator", desc.Locator,
				"grouped", desc.Grouped,
			)
			if l.hooks.OnSpanOpen != nil {
				l.hooks.OnSpanOpen(ctx, &domain.SpanEvent{SpanDescriptor: desc, Timestamp: s.started})
			}
			return nil
		},
	})
	return s
}

// Span is an open instrumentation entry.
type Span struct {
	logger *Logger
	desc   domain.SpanDescriptor
	closed atomic.Bool

	// Written and read only by queue commands.
	started    time.Time
	engineSpan ports.Span
}

// Descriptor returns what was sent to the engine's log primitive.
func (s *Span) Descriptor() domain.SpanDescriptor {
	return s.desc
}

// Close schedules the end of the span with the operation's result and error.
func (s *Span) Close(ctx context.Context, result ports.Handle, err error) error {
	if !s.closed.CompareAndSwap(false, true) {
		return domain.ErrSpanClosed
	}
	l := s.logger
	l.open.Add(-1)

	l.queue.Enqueue(context.WithoutCancel(ctx), ports.Command{
		Name: "log-close:" + s.desc.DisplayName,
		Run: func(ctx context.Context) error {
			end := l.now()
			if s.engineSpan != nil {
				s.engineSpan.Close(result, err)
			}
			ev := &domain.SpanEvent{
				SpanDescriptor: s.desc,
				Timestamp:      end,
				Duration:       end.Sub(s.started),
				Result:         Describe(result),
			}
			if err != nil {
				ev.IsError = true
				ev.Error = err.Error()
			}
			l.logger.Debug("span closed",
				"id", s.desc.ID,
				"path", s.desc.Path,
				"duration", ev.Duration,
				"result", ev.Result,
				"error", err,
			)
			if l.hooks.OnSpanClose != nil {
				l.hooks.OnSpanClose(ctx, ev)
			}
			return nil
		},
	})
	return nil
}

// Describe renders a handle for logs: its String method when it has one,
// otherwise its type.
func Describe(h ports.Handle) string {
	if h == nil {
		return ""
	}
	if s, ok := h.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", h)
}
