package element

import (
	"context"

	"github.com/aretw0/arbor/pkg/instrument"
	"github.com/aretw0/arbor/pkg/ports"
)

// Runtime binds trees to an engine at call time. Definitions stay engine
// free; the runtime travels in the context passed to Get and Call.
type Runtime struct {
	engine ports.Engine
	queue  ports.Queue
	log    *instrument.Logger
	verbs  map[string]struct{}
}

// NewRuntime snapshots the engine's verb set. log may be nil, in which case
// a logger without hooks is created on q.
func NewRuntime(engine ports.Engine, q ports.Queue, log *instrument.Logger) *Runtime {
	if log == nil {
		log = instrument.New(engine, q)
	}
	verbs := make(map[string]struct{})
	for _, v := range engine.Verbs() {
		verbs[v] = struct{}{}
	}
	return &Runtime{
		engine: engine,
		queue:  q,
		log:    log,
		verbs:  verbs,
	}
}

// HasVerb reports whether the engine understands name.
func (rt *Runtime) HasVerb(name string) bool {
	_, ok := rt.verbs[name]
	return ok
}

// Engine returns the bound engine.
func (rt *Runtime) Engine() ports.Engine { return rt.engine }

// Instrument returns the runtime's span logger.
func (rt *Runtime) Instrument() *instrument.Logger { return rt.log }

type outcome struct {
	handle ports.Handle
	err    error
}

// exec runs fn as one queue command and waits for it. fn sees no runtime
// in its context: a nested delegation from the queue worker would wait on
// itself forever, so it fails with ErrNoRuntime instead.
func (rt *Runtime) exec(ctx context.Context, name string, fn func(ctx context.Context) (ports.Handle, error)) (ports.Handle, error) {
	out := make(chan outcome, 1)
	done := rt.queue.Enqueue(ctx, ports.Command{
		Name: name,
		Run: func(ctx context.Context) error {
			h, err := fn(NewContext(ctx, nil))
			out <- outcome{handle: h, err: err}
			return err
		},
	})

	select {
	case err := <-done:
		select {
		case o := <-out:
			return o.handle, o.err
		default:
			// Skipped or panicked before producing an outcome.
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var runtimeKey = key{}

// NewContext returns a context carrying rt.
func NewContext(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey, rt)
}

// FromContext extracts the runtime, if any.
func FromContext(ctx context.Context) (*Runtime, bool) {
	rt, ok := ctx.Value(runtimeKey).(*Runtime)
	return rt, ok && rt != nil
}
