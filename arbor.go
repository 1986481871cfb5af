package arbor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/instrument"
	"github.com/aretw0/arbor/pkg/locator"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/queue"
)

// Def is a tree definition: a locator under "el", a display name under
// "name", and children, methods and plain data under any other key.
type Def = element.Def

// Method is a user-defined member. self is the node it was called on.
type Method = element.Method

// El builds a tree from a definition or a bare locator. It panics on a
// malformed definition; use Build to get the error instead.
func El(def any) *element.Node {
	return element.MustBuild(def)
}

// Build builds a tree from a definition or a bare locator.
func Build(def any) (*element.Node, error) {
	return element.Build(def)
}

// R returns a root-anchored locator: the concatenation of parts, queried
// from the document root regardless of the node's ancestors.
func R(parts ...any) locator.Locator {
	return locator.Root(parts...)
}

// Session binds trees to one engine. Calls made with its Context go through
// a single ordered command queue shared with the instrumentation.
type Session struct {
	engine   ports.Engine
	queue    ports.Queue
	owned    *queue.Serial
	log      *instrument.Logger
	runtime  *element.Runtime
	recorder *observability.Recorder
	metrics  *observability.Metrics

	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	registry prometheus.Registerer
	capacity int
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithQueue makes the session enqueue on q instead of its own serial queue.
// The caller keeps ownership of q.
func WithQueue(q ports.Queue) Option {
	return func(s *Session) {
		s.queue = q
	}
}

// WithMetrics registers span metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Session) {
		s.registry = reg
	}
}

// WithRecorder keeps the last capacity closed spans, see Session.Recorder.
func WithRecorder(capacity int) Option {
	return func(s *Session) {
		s.capacity = capacity
	}
}

// New creates a session on engine.
func New(engine ports.Engine, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, errors.New("arbor: engine is required")
	}
	s := &Session{engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.queue == nil {
		s.owned = queue.NewSerial(queue.WithLogger(s.logger))
		s.queue = s.owned
	}

	hooks := []domain.LifecycleHooks{s.hooks}
	if s.registry != nil {
		s.metrics = observability.NewMetrics(s.registry)
		hooks = append(hooks, s.metrics.Hooks())
	}
	if s.capacity > 0 {
		s.recorder = observability.NewRecorder(s.capacity)
		hooks = append(hooks, s.recorder.Hooks())
	}

	s.log = instrument.New(engine, s.queue,
		instrument.WithLogger(s.logger),
		instrument.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	)
	s.runtime = element.NewRuntime(engine, s.queue, s.log)
	return s, nil
}

// Context returns ctx carrying the session runtime. Pass it to Get and Call.
func (s *Session) Context(ctx context.Context) context.Context {
	return element.NewContext(ctx, s.runtime)
}

// Engine returns the bound engine.
func (s *Session) Engine() ports.Engine { return s.engine }

// Runtime returns the session runtime.
func (s *Session) Runtime() *element.Runtime { return s.runtime }

// Recorder returns the span recorder, or nil without WithRecorder.
func (s *Session) Recorder() *observability.Recorder { return s.recorder }

// Wait blocks until every command enqueued so far, log entries included,
// has run.
func (s *Session) Wait(ctx context.Context) error {
	return queue.Await(ctx, s.queue, ports.Command{
		Name: "wait",
		Run:  func(context.Context) error { return nil },
	})
}

// Close drains and stops the session's own queue. A queue passed with
// WithQueue is left running.
func (s *Session) Close() error {
	if s.owned == nil {
		return nil
	}
	return s.owned.Close()
}
