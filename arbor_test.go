package arbor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
)

func newSession(t *testing.T, opts ...arbor.Option) (*arbor.Session, *testutils.Engine, context.Context) {
	t.Helper()
	eng := testutils.NewEngine("should", "click", "visit")
	sess, err := arbor.New(eng, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, sess.Close()) })
	return sess, eng, sess.Context(context.Background())
}

func settle(t *testing.T, sess *arbor.Session) {
	t.Helper()
	require.NoError(t, sess.Wait(context.Background()))
}

// Scenario A: nested relative locators compose.
func TestScenario_ComposedChain(t *testing.T) {
	sess, eng, ctx := newSession(t)
	tree := arbor.El(arbor.Def{
		"el": ".root",
		"item": arbor.Def{
			"el":     ".item",
			"nested": arbor.El(".nested"),
		},
	})

	_, err := tree.Child("item").Child("nested").Call(ctx, "should", "have.text", "nested item")
	require.NoError(t, err)
	settle(t, sess)

	assert.Contains(t, eng.Trace(), "get .root .item .nested")
	assert.Contains(t, eng.Trace(), "do [.root .item .nested] should have.text nested item")
}

// Scenario B: a built node embedded twice stays independent.
func TestScenario_NoAliasing(t *testing.T) {
	shared := arbor.El(".shared")
	a := arbor.El(arbor.Def{"el": ".a", "x": shared})
	b := arbor.El(arbor.Def{"el": ".b", "x": shared})

	assert.NotSame(t, a.Child("x"), b.Child("x"))
	assert.Same(t, a, a.Child("x").Parent())
	assert.Same(t, b, b.Child("x").Parent())
	assert.Nil(t, shared.Parent())
	assert.Equal(t, ".a .shared", element.ResolvePlan(a.Child("x")).String())
	assert.Equal(t, ".b .shared", element.ResolvePlan(b.Child("x")).String())
}

// Scenario C: a root-anchored locator ignores its ancestors.
func TestScenario_RootAnchor(t *testing.T) {
	sess, eng, ctx := newSession(t)
	tree := arbor.El(arbor.Def{
		"el": ".root",
		"dialog": arbor.Def{
			"el":    arbor.R(".modal"),
			"close": arbor.El("button.close"),
		},
	})

	_, err := tree.Child("dialog").Child("close").Call(ctx, "click")
	require.NoError(t, err)
	settle(t, sess)
	assert.Contains(t, eng.Trace(), "get .modal button.close")
}

// Scenario D: no locator anywhere runs on the ambient scope.
func TestScenario_AmbientScope(t *testing.T) {
	sess, eng, ctx := newSession(t)
	page := arbor.El(arbor.Def{"name": "home"})

	_, err := page.Call(ctx, "visit", "/")
	require.NoError(t, err)
	settle(t, sess)

	assert.Equal(t, []string{
		"log-open <Home>.visit ⤵",
		"do [] visit /",
		"log-close <Home>.visit ⤵ -> engine",
	}, eng.Trace())
}

func TestSession_HooksMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	var opened int
	sess, eng, ctx := newSession(t,
		arbor.WithMetrics(reg),
		arbor.WithRecorder(8),
		arbor.WithLifecycleHooks(domain.LifecycleHooks{
			OnSpanOpen: func(context.Context, *domain.SpanEvent) { opened++ },
		}),
	)
	boom := errors.New("not visible")
	eng.FailOn("click", boom)

	btn := arbor.El(arbor.Def{
		"el": "button",
		"press": arbor.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			return self.Delegate(ctx, "click")
		}),
	})
	_, err := btn.Call(ctx, "press")
	assert.Same(t, boom, err)
	_, err = btn.Call(ctx, "should", "exist")
	require.NoError(t, err)
	settle(t, sess)

	assert.Equal(t, 3, opened)
	assert.Len(t, sess.Recorder().Snapshot(), 3)
	assert.Len(t, sess.Recorder().Failed(), 2, "the method and its delegate both fail")
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP arbor_spans_total Closed instrumentation spans.
# TYPE arbor_spans_total counter
arbor_spans_total{kind="delegate",outcome="error"} 1
arbor_spans_total{kind="delegate",outcome="ok"} 1
arbor_spans_total{kind="method",outcome="error"} 1
`), "arbor_spans_total"))
	assert.Zero(t, sess.Runtime().Instrument().Open())
}

func TestSession_ExternalQueue(t *testing.T) {
	eng := testutils.NewEngine("click")
	q := testutils.NewQueue(t)
	sess, err := arbor.New(eng, arbor.WithQueue(q))
	require.NoError(t, err)

	_, err = arbor.El(".x").Call(sess.Context(context.Background()), "click")
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	// The queue is still usable after the session closed.
	testutils.Drain(t, q)
	assert.Contains(t, eng.Trace(), "do [.x] click")
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := arbor.New(nil)
	assert.Error(t, err)
}

func TestBuild_Malformed(t *testing.T) {
	_, err := arbor.Build(arbor.Def{"el": 42})
	assert.ErrorIs(t, err, domain.ErrMalformedDefinition)
	assert.Panics(t, func() { arbor.El(arbor.Def{"name": 1}) })
}
