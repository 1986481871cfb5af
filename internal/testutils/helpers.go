package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/queue"
	"github.com/stretchr/testify/require"
)

// Engine is a scripted ports.Engine that records every call in one ordered trace.
// Scopes are rendered as strings: "" for the ambient scope, "a > b" after Find.
type Engine struct {
	mu    sync.Mutex
	verbs []string
	trace []string
	fail  map[string]error
}

var _ ports.Engine = (*Engine)(nil)

// NewEngine creates an engine understanding the given verbs.
func NewEngine(verbs ...string) *Engine {
	return &Engine{verbs: verbs, fail: make(map[string]error)}
}

// FailOn makes every call of verb return err.
func (e *Engine) FailOn(verb string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[verb] = err
}

// Trace returns a copy of the recorded calls.
func (e *Engine) Trace() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.trace...)
}

func (e *Engine) record(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = append(e.trace, fmt.Sprintf(format, args...))
}

func (e *Engine) Verbs() []string { return e.verbs }

func (e *Engine) Get(ctx context.Context, loc string) (ports.Handle, error) {
	e.record("get %s", loc)
	return &Handle{engine: e, Scope: loc}, nil
}

func (e *Engine) Find(ctx context.Context, loc string) (ports.Handle, error) {
	return e.Get(ctx, loc)
}

func (e *Engine) Do(ctx context.Context, verb string, args ...any) (ports.Handle, error) {
	return e.do(ctx, e, "", verb, args)
}

func (e *Engine) do(ctx context.Context, self ports.Handle, scope, verb string, args []any) (ports.Handle, error) {
	e.record("do [%s] %s%s", scope, verb, formatArgs(args))
	e.mu.Lock()
	err := e.fail[verb]
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return self, nil
}

func (e *Engine) String() string { return "engine" }

func (e *Engine) LogOpen(ctx context.Context, desc domain.SpanDescriptor) ports.Span {
	grouped := ""
	if desc.Grouped {
		grouped = " (grouped)"
	}
	e.record("log-open %s%s", desc.DisplayName, grouped)
	return &span{engine: e, desc: desc}
}

type span struct {
	engine *Engine
	desc   domain.SpanDescriptor
}

func (s *span) Close(result ports.Handle, err error) {
	switch {
	case err != nil:
		s.engine.record("log-close %s err=%v", s.desc.DisplayName, err)
	case result != nil:
		s.engine.record("log-close %s -> %v", s.desc.DisplayName, result)
	default:
		s.engine.record("log-close %s", s.desc.DisplayName)
	}
}

// Handle is a scope of Engine.
type Handle struct {
	engine *Engine
	Scope  string
}

func (h *Handle) Find(ctx context.Context, loc string) (ports.Handle, error) {
	h.engine.record("find [%s] %s", h.Scope, loc)
	return &Handle{engine: h.engine, Scope: h.Scope + " > " + loc}, nil
}

func (h *Handle) Do(ctx context.Context, verb string, args ...any) (ports.Handle, error) {
	return h.engine.do(ctx, h, h.Scope, verb, args)
}

func (h *Handle) String() string { return "[" + h.Scope + "]" }

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return " " + strings.Join(parts, " ")
}

// NewQueue starts a serial queue closed at the end of the test.
func NewQueue(t *testing.T) *queue.Serial {
	t.Helper()
	q := queue.NewSerial()
	t.Cleanup(func() {
		require.NoError(t, q.Close())
	})
	return q
}

// Drain waits until every command enqueued on q so far has run.
func Drain(t *testing.T, q ports.Queue) {
	t.Helper()
	err := queue.Await(context.Background(), q, ports.Command{
		Name: "drain",
		Run:  func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)
}
